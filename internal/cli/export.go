package cli

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/validateiq/validateiq/internal/store"
)

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export <signups|events>",
	Short: "Export raw signup or event data",
	Long: `Export the waitlist or the raw event log in CSV or JSON format.

Examples:
  validateiq export signups --format csv > signups.csv
  validateiq export events --format json > events.json`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"signups", "events"},
	RunE:      runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "output format (csv or json)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportFormat != "csv" && exportFormat != "json" {
		return fmt.Errorf("invalid format: must be 'csv' or 'json'")
	}

	kind := args[0]
	if kind != "signups" && kind != "events" {
		return fmt.Errorf("invalid export %q: must be 'signups' or 'events'", kind)
	}

	return withStore(func(s *store.SQLiteStore) error {
		ctx := context.Background()

		if kind == "signups" {
			signups, err := s.ListSignups(ctx)
			if err != nil {
				return fmt.Errorf("failed to list signups: %w", err)
			}
			if exportFormat == "csv" {
				return exportSignupsCSV(os.Stdout, signups)
			}
			return writeJSON(os.Stdout, jsonExport{Signups: toJSONSignups(signups)})
		}

		events, err := s.ListEvents(ctx)
		if err != nil {
			return fmt.Errorf("failed to list events: %w", err)
		}
		if exportFormat == "csv" {
			return exportEventsCSV(os.Stdout, events)
		}
		return writeJSON(os.Stdout, jsonExport{Events: toJSONEvents(events)})
	})
}

func exportSignupsCSV(out io.Writer, signups []*store.Signup) error {
	w := csv.NewWriter(out)

	header := []string{"position", "timestamp", "visitor_id", "email", "most_wanted_feature",
		"marketing_consent", "signup_source", "time_to_signup_seconds", "page_views_before_signup", "events_before_signup"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, s := range signups {
		row := []string{
			strconv.Itoa(s.WaitlistPosition),
			strconv.FormatInt(s.CreatedAt.Unix(), 10),
			strconv.FormatInt(s.VisitorID, 10),
			s.Email,
			s.MostWantedFeature,
			strconv.FormatBool(s.MarketingConsent),
			s.SignupSource,
			optionalInt(s.TimeToSignupSeconds),
			strconv.Itoa(s.PageViewsBeforeSignup),
			strconv.Itoa(s.EventsBeforeSignup),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

func exportEventsCSV(out io.Writer, events []*store.Event) error {
	w := csv.NewWriter(out)

	header := []string{"timestamp", "visitor_id", "page_view_id", "event_type", "event_category",
		"section", "element_text", "properties", "scroll_position", "time_since_page_load"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, e := range events {
		props := ""
		if len(e.Properties) > 0 {
			b, err := json.Marshal(e.Properties)
			if err != nil {
				return fmt.Errorf("failed to encode properties: %w", err)
			}
			props = string(b)
		}

		pageView := ""
		if e.PageViewID != nil {
			pageView = strconv.FormatInt(*e.PageViewID, 10)
		}

		row := []string{
			strconv.FormatInt(e.CreatedAt.Unix(), 10),
			strconv.FormatInt(e.VisitorID, 10),
			pageView,
			e.EventType,
			e.EventCategory,
			e.Section,
			e.ElementText,
			props,
			optionalInt(e.ScrollPosition),
			optionalInt(e.TimeSincePageLoad),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

func optionalInt(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

type jsonExport struct {
	Signups []jsonSignup `json:"signups,omitempty"`
	Events  []jsonEvent  `json:"events,omitempty"`
}

type jsonSignup struct {
	Position              int    `json:"position"`
	Timestamp             int64  `json:"timestamp"`
	VisitorID             int64  `json:"visitor_id"`
	Email                 string `json:"email"`
	MostWantedFeature     string `json:"most_wanted_feature"`
	MarketingConsent      bool   `json:"marketing_consent"`
	SignupSource          string `json:"signup_source,omitempty"`
	TimeToSignupSeconds   *int   `json:"time_to_signup_seconds,omitempty"`
	PageViewsBeforeSignup int    `json:"page_views_before_signup"`
	EventsBeforeSignup    int    `json:"events_before_signup"`
}

type jsonEvent struct {
	Timestamp         int64          `json:"timestamp"`
	VisitorID         int64          `json:"visitor_id"`
	PageViewID        *int64         `json:"page_view_id,omitempty"`
	EventType         string         `json:"event_type"`
	EventCategory     string         `json:"event_category,omitempty"`
	Section           string         `json:"section,omitempty"`
	ElementText       string         `json:"element_text,omitempty"`
	Properties        map[string]any `json:"properties,omitempty"`
	ScrollPosition    *int           `json:"scroll_position,omitempty"`
	TimeSincePageLoad *int           `json:"time_since_page_load,omitempty"`
}

func toJSONSignups(signups []*store.Signup) []jsonSignup {
	out := make([]jsonSignup, len(signups))
	for i, s := range signups {
		out[i] = jsonSignup{
			Position:              s.WaitlistPosition,
			Timestamp:             s.CreatedAt.Unix(),
			VisitorID:             s.VisitorID,
			Email:                 s.Email,
			MostWantedFeature:     s.MostWantedFeature,
			MarketingConsent:      s.MarketingConsent,
			SignupSource:          s.SignupSource,
			TimeToSignupSeconds:   s.TimeToSignupSeconds,
			PageViewsBeforeSignup: s.PageViewsBeforeSignup,
			EventsBeforeSignup:    s.EventsBeforeSignup,
		}
	}
	return out
}

func toJSONEvents(events []*store.Event) []jsonEvent {
	out := make([]jsonEvent, len(events))
	for i, e := range events {
		out[i] = jsonEvent{
			Timestamp:         e.CreatedAt.Unix(),
			VisitorID:         e.VisitorID,
			PageViewID:        e.PageViewID,
			EventType:         e.EventType,
			EventCategory:     e.EventCategory,
			Section:           e.Section,
			ElementText:       e.ElementText,
			Properties:        e.Properties,
			ScrollPosition:    e.ScrollPosition,
			TimeSincePageLoad: e.TimeSincePageLoad,
		}
	}
	return out
}

func writeJSON(out io.Writer, v any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
