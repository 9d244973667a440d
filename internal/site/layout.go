// Package site renders the landing page and the stats dashboard.
package site

import (
	"strconv"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/validateiq/validateiq/internal/landing"
)

type PageConfig struct {
	Title       string
	Description string
	// Scripts are loaded at the end of the body.
	Scripts []string
}

func Layout(config PageConfig, content ...g.Node) g.Node {
	if config.Title == "" {
		config.Title = "ValidateIQ"
	}

	return g.Group([]g.Node{
		g.Raw("<!DOCTYPE html>"),
		HTML(
			Lang("en"),
			Head(
				Meta(Charset("utf-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1.0")),
				TitleEl(g.Text(config.Title)),
				g.If(config.Description != "", Meta(Name("description"), Content(config.Description))),
				Meta(g.Attr("property", "og:title"), Content(config.Title)),
				Meta(g.Attr("property", "og:type"), Content("website")),
			),
			Body(
				Class("bg-primary"),
				g.Group(content),
				g.Group(g.Map(config.Scripts, func(src string) g.Node {
					return Script(Src(src), g.Attr("defer"))
				})),
			),
		),
	})
}

// Landing is the full waitlist page.
func Landing(c *Copy, w WaitlistView) g.Node {
	return Layout(
		PageConfig{
			Title:       c.Title,
			Description: c.Description,
			Scripts:     []string{"/vq.js"},
		},
		Main(
			Hero(c.Hero),
			Problem(c.Problem),
			Features(c.Features),
			SocialProof(c.SocialProof),
			Waitlist(c.Waitlist, w),
		),
		PageFooter(c.Footer),
	)
}

// observed marks a section for the tracker script.
func observed(sectionID string) g.Node {
	var attrs []g.Node
	for _, s := range landing.Sections {
		if s.ID != sectionID {
			continue
		}
		attrs = append(attrs,
			g.Attr("data-vq-section", s.ID),
			g.Attr("data-vq-threshold", strconv.FormatFloat(s.Threshold, 'f', -1, 64)),
		)
		if s.Tracked {
			attrs = append(attrs, g.Attr("data-vq-track"))
		}
	}
	return g.Group(attrs)
}
