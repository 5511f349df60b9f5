package render

// Built-in page layouts. The generator ships its own minimal markup instead
// of a theme system; theme toggles from the configuration surface only as
// params passed to these templates.

const headerTemplate = `{{- define "header" -}}
<!DOCTYPE html>
<html lang="{{ .Site.LanguageCode }}">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{ .PageTitle }} | {{ .Site.Title }}</title>
<base href="{{ .Site.BaseURL }}">
</head>
<body>
<header class="site-header">
<h1 class="site-title"><a href="{{ .Site.BaseURL }}">{{ .Site.Title }}</a></h1>
<nav class="site-menu">
<ul>
{{- range .Site.Menu }}
<li><a href="{{ .URL }}">{{ .Name }}</a></li>
{{- end }}
</ul>
</nav>
</header>
<main>
{{- end -}}`

const footerTemplate = `{{- define "footer" -}}
</main>
<footer class="site-footer">
<p>{{ .Site.Title }}</p>
</footer>
</body>
</html>
{{- end -}}`

const documentTemplate = `{{- define "document" -}}
{{ template "header" . }}
<article>
<header class="headline">
<h1>{{ .Doc.Title }}</h1>
<time datetime="{{ .Doc.Date.Format "2006-01-02" }}">{{ .Doc.Date.Format "January 2, 2006" }}</time>
{{- if .Doc.Cover }}
<img class="cover" src="{{ .Doc.Cover }}" alt="">
{{- end }}
</header>
{{ .Content }}
{{- if .SeriesNav }}
<nav class="series-nav">
<p>Part {{ .SeriesNav.Position }} of {{ .SeriesNav.Total }} in <a href="{{ .SeriesNav.URL }}">{{ .SeriesNav.Title }}</a></p>
{{- if .SeriesNav.Prev }}
<a class="prev" href="{{ .SeriesNav.Prev.URL }}">&larr; {{ .SeriesNav.Prev.Title }}</a>
{{- end }}
{{- if .SeriesNav.Next }}
<a class="next" href="{{ .SeriesNav.Next.URL }}">{{ .SeriesNav.Next.Title }} &rarr;</a>
{{- end }}
</nav>
{{- end }}
{{- if .Doc.Tags }}
<footer class="footline">
<ul class="tags">
{{- range .TagLinks }}
<li><a href="{{ .URL }}">{{ .Title }}</a></li>
{{- end }}
</ul>
</footer>
{{- end }}
</article>
{{ template "footer" . }}
{{- end -}}`

const listTemplate = `{{- define "list" -}}
{{ template "header" . }}
<section class="listing">
<h1>{{ .Heading }}</h1>
{{- if .Items }}
<ul class="document-list">
{{- range .Items }}
<li>
<h3><a href="{{ .URL }}">{{ .Title }}</a></h3>
<time datetime="{{ .Date.Format "2006-01-02" }}">{{ .Date.Format "January 2, 2006" }}</time>
{{- with .Summary }}
<p class="summary">{{ . }}</p>
{{- end }}
</li>
{{- end }}
</ul>
{{- else }}
<p>Nothing published here yet.</p>
{{- end }}
{{- if .Pager }}
<nav class="pagination">
{{- if .Pager.Prev }}
<a class="newer" href="{{ .Pager.Prev }}">&larr; Newer</a>
{{- end }}
<span>Page {{ .Pager.Page }} of {{ .Pager.Total }}</span>
{{- if .Pager.Next }}
<a class="older" href="{{ .Pager.Next }}">Older &rarr;</a>
{{- end }}
</nav>
{{- end }}
</section>
{{ template "footer" . }}
{{- end -}}`

const termsTemplate = `{{- define "terms" -}}
{{ template "header" . }}
<section class="terms">
<h1>{{ .Heading }}</h1>
<ul class="term-list">
{{- range .Terms }}
<li><a href="{{ .URL }}">{{ .Title }}</a> <span class="count">({{ .Count }})</span></li>
{{- end }}
</ul>
</section>
{{ template "footer" . }}
{{- end -}}`
