// Package report writes self-contained HTML pages for a tour run: captured
// frames embedded as data URLs, the terminal views in color and the log of
// actions and trips.
package report

import (
	"encoding/base64"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Report is one run of the tour.
type Report struct {
	Name      string
	Timestamp time.Time
	Duration  time.Duration
	Success   bool
	Error     string
	Frames    []Frame
	Steps     []Step
	Actions   []Action
	Trips     string
	Metadata  map[string]string
}

// Frame is a captured PNG.
type Frame struct {
	Label    string
	Filename string
	DataURL  template.URL
}

// Step is a terminal view at one moment of the run.
type Step struct {
	Timestamp time.Time
	Slide     int
	CameraX   float64
	View      template.HTML
}

// Action is one entry of the action log.
type Action struct {
	Timestamp time.Time
	Type      string
	Details   string
}

// New creates an empty report stamped with the current time.
func New(name string) *Report {
	return &Report{
		Name:      name,
		Timestamp: time.Now(),
		Success:   true,
		Metadata:  make(map[string]string),
	}
}

// AddFrame embeds the image at path.
func (r *Report) AddFrame(path string) error {
	url, err := dataURL(path)
	if err != nil {
		return err
	}
	r.Frames = append(r.Frames, Frame{
		Label:    frameLabel(path),
		Filename: filepath.Base(path),
		DataURL:  url,
	})
	return nil
}

// AddView records a terminal view.
func (r *Report) AddView(ts time.Time, slide int, cameraX float64, view string) {
	r.Steps = append(r.Steps, Step{
		Timestamp: ts,
		Slide:     slide,
		CameraX:   cameraX,
		View:      ViewHTML(view),
	})
}

// AddAction appends to the action log.
func (r *Report) AddAction(ts time.Time, kind string, details interface{}) {
	r.Actions = append(r.Actions, Action{
		Timestamp: ts,
		Type:      kind,
		Details:   fmt.Sprintf("%v", details),
	})
}

// frameLabel recovers the label from a frame_NNN_label.png file name.
func frameLabel(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if parts := strings.SplitN(name, "_", 3); len(parts) == 3 && parts[0] == "frame" {
		return parts[2]
	}
	return name
}

// dataURL reads an image file and encodes it as a base64 data URL.
func dataURL(path string) (template.URL, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read image file: %w", err)
	}

	var mimeType string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		mimeType = "image/jpeg"
	case ".gif":
		mimeType = "image/gif"
	case ".webp":
		mimeType = "image/webp"
	default:
		mimeType = "image/png"
	}

	return template.URL(fmt.Sprintf("data:%s;base64,%s", mimeType,
		base64.StdEncoding.EncodeToString(data))), nil
}

// Writer renders reports into a directory.
type Writer struct {
	outputDir string
	tmpl      *template.Template
}

// NewWriter creates a writer for outputDir.
func NewWriter(outputDir string) *Writer {
	return &Writer{
		outputDir: outputDir,
		tmpl:      template.Must(template.New("report").Parse(pageTemplate)),
	}
}

// Write renders r to index.html in the output directory and returns its path.
func (w *Writer) Write(r *Report) (string, error) {
	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(w.outputDir, "index.html")
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := w.tmpl.Execute(file, r); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return path, nil
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Name}} - orrery report</title>
<style>
body { background: #0d1117; color: #c9d1d9; font-family: sans-serif; margin: 2em; }
h1 { margin-bottom: 0.2em; }
.passed { color: #3fb950; }
.failed { color: #f85149; }
.frames { display: flex; flex-wrap: wrap; gap: 1em; }
figure { margin: 0; }
figure img { max-width: 480px; border: 1px solid #30363d; image-rendering: pixelated; }
.view { background: #000; font-family: monospace; line-height: 1; white-space: pre; padding: 0.5em; overflow-x: auto; }
table { border-collapse: collapse; }
td, th { border-bottom: 1px solid #30363d; padding: 0.2em 0.8em; text-align: left; }
pre.trips { white-space: pre-wrap; }
</style>
</head>
<body>
<h1>{{.Name}}</h1>
<p>{{if .Success}}<span class="passed">PASSED</span>{{else}}<span class="failed">FAILED</span>{{end}}
 &middot; {{.Timestamp.Format "2006-01-02 15:04:05"}}
 &middot; <strong>Duration:</strong> {{.Duration}}
 &middot; <strong>Frames:</strong> {{len .Frames}} captured</p>
{{with .Error}}<p class="failed">{{.}}</p>{{end}}
{{if .Metadata}}<table>{{range $k, $v := .Metadata}}<tr><th>{{$k}}</th><td>{{$v}}</td></tr>{{end}}</table>{{end}}

{{if .Frames}}<h2>Frames</h2>
<div class="frames">{{range .Frames}}
<figure><img src="{{.DataURL}}" alt="{{.Label}}"><figcaption>{{.Label}} ({{.Filename}})</figcaption></figure>{{end}}
</div>{{end}}

{{if .Steps}}<h2>Views</h2>{{range $i, $s := .Steps}}
<h3>#{{$i}} slide {{$s.Slide}}, camera x {{printf "%.2f" $s.CameraX}}</h3>
<div class="view">{{$s.View}}</div>{{end}}{{end}}

{{if .Actions}}<h2>Actions</h2>
<table><tr><th>time</th><th>type</th><th>details</th></tr>{{range .Actions}}
<tr><td>{{.Timestamp.Format "15:04:05.000"}}</td><td>{{.Type}}</td><td>{{.Details}}</td></tr>{{end}}
</table>{{end}}

{{with .Trips}}<h2>Trips</h2><pre class="trips">{{.}}</pre>{{end}}
</body>
</html>
`
