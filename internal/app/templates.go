package app

// ── Partials placed by the host document ─────────────────────────────────────

const tmplPartials = `
{{define "grid"}}<div id="calendar-grid" class="grid">
{{- range .Windows}}
<form method="post" action="/windows/{{.Day}}/open" class="window window-{{.Status}}">
<button type="submit"{{if not .Status.Clickable}} aria-disabled="true"{{end}} aria-label="Day {{.Day}}">
<span class="day">{{.Day}}</span>
{{- if isOpened .Status}}<span class="check">✓</span>{{end}}
{{- if .Feast}}<span class="feast">{{.Feast}}</span>{{end}}
</button>
</form>
{{- end}}
</div>{{end}}

{{define "overlay"}}{{with .Overlay}}<div id="modal-overlay" class="overlay" data-close-href="/">
<div class="panel" role="dialog" aria-modal="true" aria-labelledby="modal-title">
<a id="close-modal" class="close" href="/" aria-label="Close">&times;</a>
<h2 id="modal-title">{{.Title}}</h2>
<div id="modal-content">
{{- if .Photo}}<div class="photo">{{if .PhotoMissing}}{{template "image-failed" .Photo}}{{else}}<img src="{{.PhotoURL}}" alt="{{.Title}}" data-path="{{.Photo}}">{{end}}</div>{{end}}
{{- if .Message}}<div class="message">{{.Message}}</div>{{end}}
{{- if .Empty}}<div class="empty"><p>No content for this day.</p></div>{{end}}
</div>
</div>
</div>{{end}}{{end}}

{{define "image-failed"}}<div class="image-failed"><p class="error">Failed to load image</p><p class="path">Path: {{.}}</p></div>{{end}}

{{define "notice"}}<div id="error-toast" class="toast{{if not .NoticeVisible}} hidden{{end}}" role="status" data-dismiss-ms="{{.NoticeMillis}}"><p id="error-message">{{.Notice}}</p></div>{{end}}

{{define "snow"}}<div id="snow-container" aria-hidden="true"{{if .SnowStream}} data-stream="/api/snow"{{end}}>
{{- range .Snow}}<div class="snowflake" data-id="{{.ID}}" style="width:{{fixed .Size}}px;height:{{fixed .Size}}px;left:{{fixed .Left}}%;opacity:{{fixed .Opacity}};animation-duration:{{fixed .Duration}}s;animation-delay:{{fixed .Delay}}s;--drift:{{fixed .Drift}}px"></div>{{end}}
</div>{{end}}
`

// ── Degraded state ───────────────────────────────────────────────────────────

const tmplBanner = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>Advent Calendar</title>
<style>
body{font-family:system-ui,sans-serif;background:#1b2a41;margin:0;padding:32px}
.banner{max-width:560px;margin:48px auto;text-align:center;padding:32px;background:#fee2e2;border-radius:8px}
.banner .title{color:#dc2626;font-weight:700;margin-bottom:8px}
.banner p{color:#374151}
</style>
</head>
<body>
<div id="calendar-grid">
<div class="banner">
<p class="title">Error loading calendar</p>
<p>Please check the server log for details.</p>
</div>
</div>
</body>
</html>
`
