package site

import (
	"fmt"
	"strconv"
	"strings"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/validateiq/validateiq/internal/landing"
	"github.com/validateiq/validateiq/internal/waitlist"
)

// WaitlistView is the state the waitlist section renders.
type WaitlistView struct {
	Count     int
	Cap       int
	SpotsLeft int
	// Result switches the section to the success view.
	Result *waitlist.Result
	Error  string
}

func (v WaitlistView) progress() int {
	if v.Cap <= 0 {
		return 0
	}
	return min(v.Count*100/v.Cap, 100)
}

func Waitlist(c WaitlistContent, v WaitlistView) g.Node {
	if v.Cap <= 0 {
		v.Cap = landing.DefaultCap
	}

	body := waitlistForm(c, v)
	if v.Result != nil {
		spots := v.SpotsLeft
		if v.Result.SpotsLeft != nil {
			spots = *v.Result.SpotsLeft
		}
		body = WaitlistSuccess(c, strconv.Itoa(v.Result.Position), spots > 0, strconv.Itoa(spots))
	}

	return Section(
		ID(landing.WaitlistAnchor),
		Class("section waitlist"),
		observed("waitlist_form"),
		body,
		// The tracker script fills this in after a successful signup.
		g.El("template", ID("vq-success"), WaitlistSuccess(c, "", true, "")),
	)
}

// WaitlistSuccess is the confirmation shown in place of the form. Empty
// position and spots leave placeholders for the tracker script.
func WaitlistSuccess(c WaitlistContent, position string, showSpots bool, spots string) g.Node {
	return Div(
		Class("card waitlist-success"),
		H3(g.Text(c.SuccessHeading)),
		P(
			g.Text("Position "),
			Strong(g.Attr("data-vq-position"), g.Text("#"+position)),
			g.Text(" on the waitlist."),
			Br(),
			g.Text(c.SuccessBody),
		),
		g.If(showSpots, P(
			Class("spots"),
			g.Text("Only "),
			Span(g.Attr("data-vq-spots"), g.Text(spots)),
			g.Text(" early bird spots left"),
		)),
	)
}

func waitlistForm(c WaitlistContent, v WaitlistView) g.Node {
	scarcity := strings.NewReplacer(
		"{count}", strconv.Itoa(v.Count),
		"{cap}", strconv.Itoa(v.Cap),
	).Replace(c.Scarcity)

	return Div(
		Class("card waitlist-card"),

		Div(
			Class("section-header"),
			H2(g.Text(c.Heading)),
			P(Class("offer"), g.Text(c.Offer)),
			P(Class("scarcity"), g.Text(scarcity)),
		),

		Div(
			Class("progress"),
			Div(
				Class("progress-track"),
				Div(Class("progress-bar"), g.Attr("style", fmt.Sprintf("width: %d%%", v.progress()))),
			),
			Div(
				Class("progress-labels"),
				Span(g.Attr("data-vq-count"), g.Text(fmt.Sprintf("%d signed up", v.Count))),
				Span(g.Attr("data-vq-spots-left"), g.Text(fmt.Sprintf("%d spots left", v.SpotsLeft))),
			),
		),

		Form(
			ID("waitlist-form"),
			g.Attr("data-vq-form"),
			g.Attr("novalidate"),

			Input(
				Type("email"),
				Name("email"),
				Placeholder(c.EmailPlaceholder),
				g.Attr("autocomplete", "email"),
			),

			Label(
				g.Attr("for", "most_wanted_feature"),
				g.Text(c.FeatureLabel),
			),
			Select(
				ID("most_wanted_feature"),
				Name("most_wanted_feature"),
				Option(Value(""), g.Text(c.FeaturePlaceholder)),
				g.Group(g.Map(waitlist.Options(), func(o waitlist.Option) g.Node {
					return Option(Value(string(o.Value)), g.Text(o.Label))
				})),
			),

			Label(
				Class("consent"),
				Input(Type("checkbox"), Name("marketing_consent")),
				Span(g.Text(c.Consent)),
			),

			Div(
				Class("form-error"),
				g.Attr("data-vq-error"),
				g.If(v.Error == "", g.Attr("hidden")),
				g.Text(v.Error),
			),

			Button(Type("submit"), Class("btn btn-primary"), g.Text(c.Submit)),
		),

		P(Class("privacy"), g.Text(c.Privacy)),
	)
}
