// Package snippets renders the markup that adds the ValidateIQ tracker and
// waitlist form to a page hosted elsewhere.
package snippets

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/validateiq/validateiq/internal/landing"
	"github.com/validateiq/validateiq/internal/waitlist"
)

type Framework string

const (
	FrameworkHTML   Framework = "html"
	FrameworkNextJS Framework = "nextjs"
	FrameworkVue    Framework = "vue"
)

// ParseFramework accepts the names AllFrameworks returns.
func ParseFramework(s string) (Framework, error) {
	for _, f := range AllFrameworks() {
		if string(f) == strings.ToLower(s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown framework %q", s)
}

func AllFrameworks() []Framework {
	return []Framework{FrameworkHTML, FrameworkNextJS, FrameworkVue}
}

type SnippetFile struct {
	Filename string
	Content  string
}

type section struct {
	ID        string
	Threshold string
	Tracked   bool
}

type templateData struct {
	ServerURL string
	Sections  []section
	Features  []waitlist.Option
}

func Generate(framework Framework, serverURL string) ([]SnippetFile, error) {
	data := buildTemplateData(serverURL)

	switch framework {
	case FrameworkNextJS:
		return render(data,
			SnippetFile{Filename: "app/layout.tsx", Content: nextLayout},
			SnippetFile{Filename: "app/waitlist.tsx", Content: nextWaitlist},
		)
	case FrameworkVue:
		return render(data,
			SnippetFile{Filename: "index.html", Content: scriptTag},
			SnippetFile{Filename: "Waitlist.vue", Content: vueWaitlist},
		)
	default:
		return render(data,
			SnippetFile{Filename: "index.html", Content: scriptTag + "\n" + htmlWaitlist},
		)
	}
}

func buildTemplateData(serverURL string) templateData {
	data := templateData{
		ServerURL: strings.TrimRight(serverURL, "/"),
		Features:  waitlist.Options(),
	}
	for _, s := range landing.Sections {
		data.Sections = append(data.Sections, section{
			ID:        s.ID,
			Threshold: strconv.FormatFloat(s.Threshold, 'f', -1, 64),
			Tracked:   s.Tracked,
		})
	}
	return data
}

func render(data templateData, files ...SnippetFile) ([]SnippetFile, error) {
	out := make([]SnippetFile, len(files))
	for i, f := range files {
		tmpl, err := template.New(f.Filename).Parse(f.Content)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", f.Filename, err)
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", f.Filename, err)
		}
		out[i] = SnippetFile{Filename: f.Filename, Content: buf.String()}
	}
	return out, nil
}

const scriptTag = `<!-- ValidateIQ tracker -->
<script src="{{.ServerURL}}/vq.js" defer></script>
`

// Observed sections; put the attributes on your own section elements.
const sectionsComment = `<!--
  Mark the sections you want reported:
{{- range .Sections}}
  <section data-vq-section="{{.ID}}" data-vq-threshold="{{.Threshold}}"{{if .Tracked}} data-vq-track{{end}}>
{{- end}}
  CTAs: <a href="#waitlist" data-vq-cta="hero">Join the waitlist</a>
  Feature cards: <div data-vq-feature="Feature name">
-->`

const htmlWaitlist = sectionsComment + `
<section id="waitlist" data-vq-section="waitlist_form" data-vq-threshold="0.2" data-vq-track>
  <div class="waitlist-card">
    <span data-vq-count></span> · <span data-vq-spots-left></span>
    <form id="waitlist-form" data-vq-form novalidate>
      <input type="email" name="email" placeholder="you@company.com" autocomplete="email">
      <select name="most_wanted_feature">
        <option value="">Pick one</option>
{{- range .Features}}
        <option value="{{.Value}}">{{.Label}}</option>
{{- end}}
      </select>
      <label><input type="checkbox" name="marketing_consent"> Send me product updates</label>
      <div data-vq-error hidden></div>
      <button type="submit">Join the waitlist</button>
    </form>
  </div>
  <template id="vq-success">
    <p>You're <strong data-vq-position></strong> on the waitlist.</p>
    <p>Only <span data-vq-spots></span> early bird spots left</p>
  </template>
</section>
`

const nextLayout = `import Script from "next/script";

export default function RootLayout({ children }: { children: React.ReactNode }) {
  return (
    <html lang="en">
      <body>
        {children}
        <Script src="{{.ServerURL}}/vq.js" strategy="afterInteractive" />
      </body>
    </html>
  );
}
`

const nextWaitlist = `// Rendered once; /vq.js binds to the data-vq-* attributes after load.
export function Waitlist() {
  return (
    <section id="waitlist" data-vq-section="waitlist_form" data-vq-threshold="0.2" data-vq-track="">
      <div className="waitlist-card">
        <span data-vq-count="" /> · <span data-vq-spots-left="" />
        <form id="waitlist-form" data-vq-form="" noValidate>
          <input type="email" name="email" placeholder="you@company.com" autoComplete="email" />
          <select name="most_wanted_feature" defaultValue="">
            <option value="">Pick one</option>
{{- range .Features}}
            <option value="{{.Value}}">{{.Label}}</option>
{{- end}}
          </select>
          <label><input type="checkbox" name="marketing_consent" /> Send me product updates</label>
          <div data-vq-error="" hidden />
          <button type="submit">Join the waitlist</button>
        </form>
      </div>
      <template id="vq-success" dangerouslySetInnerHTML={{"{{"}} __html:
        '<p>You\'re <strong data-vq-position></strong> on the waitlist.</p>' +
        '<p>Only <span data-vq-spots></span> early bird spots left</p>' {{"}}"}} />
    </section>
  );
}
`

const vueWaitlist = `<template>
  <section id="waitlist" data-vq-section="waitlist_form" data-vq-threshold="0.2" data-vq-track>
    <div class="waitlist-card">
      <span data-vq-count></span> · <span data-vq-spots-left></span>
      <form id="waitlist-form" data-vq-form novalidate>
        <input type="email" name="email" placeholder="you@company.com" autocomplete="email">
        <select name="most_wanted_feature">
          <option value="">Pick one</option>
{{- range .Features}}
          <option value="{{.Value}}">{{.Label}}</option>
{{- end}}
        </select>
        <label><input type="checkbox" name="marketing_consent"> Send me product updates</label>
        <div data-vq-error hidden></div>
        <button type="submit">Join the waitlist</button>
      </form>
    </div>
    <template id="vq-success" v-pre>
      <p>You're <strong data-vq-position></strong> on the waitlist.</p>
      <p>Only <span data-vq-spots></span> early bird spots left</p>
    </template>
  </section>
</template>
`
