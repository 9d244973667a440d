package site

import (
	"fmt"
	"time"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/validateiq/validateiq/internal/landing"
)

func Hero(c HeroContent) g.Node {
	return Section(
		ID("hero"),
		Class("section hero"),
		observed("hero"),

		Div(Class("badge"), Span(Class("badge-dot")), g.Text(c.Badge)),

		H1(
			g.Text(c.Headline),
			Br(),
			Span(Class("gradient-text"), g.Text(c.HeadlineAccent)),
		),

		P(
			Class("subheadline"),
			g.Text(c.Subheadline+" "),
			Span(Class("accent"), g.Text(c.SubheadlineAccent)),
		),

		Div(
			Class("cta"),
			A(
				Class("btn btn-primary"),
				Href("#"+landing.WaitlistAnchor),
				g.Attr("data-vq-cta", "hero"),
				g.Text(c.CTA),
			),
			P(Class("discount"), g.Text(c.Discount)),
		),

		Ul(
			Class("trust-badges"),
			g.Group(g.Map(c.TrustBadges, func(badge string) g.Node {
				return Li(g.Text(badge))
			})),
		),
	)
}

func Problem(c ProblemContent) g.Node {
	return Section(
		ID("problem"),
		Class("section problem"),
		observed("problem"),

		Div(
			Class("section-header"),
			H2(Span(Class("gradient-text-accent"), g.Text(c.Heading))),
			P(g.Text(c.Subheading)),
		),

		Div(
			Class("grid grid-3"),
			g.Group(g.Map(c.Cards, func(card Card) g.Node {
				return Div(
					Class("card problem-card"),
					H3(g.Text(card.Title)),
					P(g.Text(card.Description)),
				)
			})),
		),
	)
}

func Features(c FeaturesContent) g.Node {
	return Section(
		ID("features"),
		Class("section features"),
		observed("features"),

		Div(
			Class("section-header"),
			H2(
				g.Text(c.Heading+" "),
				Span(Class("gradient-text-accent"), g.Text(c.HeadingAccent)),
			),
			P(g.Text(c.Subheading)),
		),

		Div(
			Class("grid grid-3"),
			g.Group(g.Map(c.Cards, func(card Card) g.Node {
				return Div(
					Class(fmt.Sprintf("card feature-card feature-%s", card.Color)),
					g.Attr("data-vq-feature", card.Title),
					g.If(card.Name != "", g.Attr("data-feature", card.Name)),
					H3(g.Text(card.Title)),
					P(g.Text(card.Description)),
				)
			})),
		),
	)
}

func SocialProof(c SocialProofContent) g.Node {
	return Section(
		ID("social-proof"),
		Class("section social-proof"),
		observed("social_proof"),

		g.El("blockquote", Class("quote"), g.Text(`"`+c.Quote+`"`)),
		P(Class("story"), g.Text(c.Story)),

		Div(
			Class("grid grid-3 stats"),
			g.Group(g.Map(c.Stats, func(s Stat) g.Node {
				return Div(
					Class("stat"),
					Div(Class("stat-value"), g.Text(s.Value)),
					Div(Class("stat-label"), g.Text(s.Label)),
				)
			})),
		),
	)
}

func PageFooter(c FooterContent) g.Node {
	return Footer(
		Class("footer"),
		P(Class("tagline"), g.Text(c.Tagline)),
		Nav(
			Class("footer-links"),
			g.Group(g.Map(c.Links, func(l FooterLink) g.Node {
				return A(Href(l.Href), Rel("noopener noreferrer"), g.Text(l.Label))
			})),
		),
		P(Class("copyright"), g.Raw("&copy; "), g.Text(fmt.Sprintf("%d %s", time.Now().Year(), c.Copyright))),
	)
}
