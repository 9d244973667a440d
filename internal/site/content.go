package site

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var defaultContent []byte

// Copy is the landing page text.
type Copy struct {
	Title       string             `yaml:"title"`
	Description string             `yaml:"description"`
	Hero        HeroContent        `yaml:"hero"`
	Problem     ProblemContent     `yaml:"problem"`
	Features    FeaturesContent    `yaml:"features"`
	SocialProof SocialProofContent `yaml:"social_proof"`
	Waitlist    WaitlistContent    `yaml:"waitlist"`
	Footer      FooterContent      `yaml:"footer"`
}

type HeroContent struct {
	Badge             string   `yaml:"badge"`
	Headline          string   `yaml:"headline"`
	HeadlineAccent    string   `yaml:"headline_accent"`
	Subheadline       string   `yaml:"subheadline"`
	SubheadlineAccent string   `yaml:"subheadline_accent"`
	CTA               string   `yaml:"cta"`
	Discount          string   `yaml:"discount"`
	TrustBadges       []string `yaml:"trust_badges"`
}

type Card struct {
	Name        string `yaml:"name"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Color       string `yaml:"color"`
}

type ProblemContent struct {
	Heading    string `yaml:"heading"`
	Subheading string `yaml:"subheading"`
	Cards      []Card `yaml:"cards"`
}

type FeaturesContent struct {
	Heading       string `yaml:"heading"`
	HeadingAccent string `yaml:"heading_accent"`
	Subheading    string `yaml:"subheading"`
	Cards         []Card `yaml:"cards"`
}

type Stat struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

type SocialProofContent struct {
	Quote string `yaml:"quote"`
	Story string `yaml:"story"`
	Stats []Stat `yaml:"stats"`
}

type WaitlistContent struct {
	Heading            string `yaml:"heading"`
	Offer              string `yaml:"offer"`
	Scarcity           string `yaml:"scarcity"`
	EmailPlaceholder   string `yaml:"email_placeholder"`
	FeatureLabel       string `yaml:"feature_label"`
	FeaturePlaceholder string `yaml:"feature_placeholder"`
	Consent            string `yaml:"consent"`
	Submit             string `yaml:"submit"`
	Privacy            string `yaml:"privacy"`
	SuccessHeading     string `yaml:"success_heading"`
	SuccessBody        string `yaml:"success_body"`
}

type FooterLink struct {
	Label string `yaml:"label"`
	Href  string `yaml:"href"`
}

type FooterContent struct {
	Tagline   string       `yaml:"tagline"`
	Copyright string       `yaml:"copyright"`
	Links     []FooterLink `yaml:"links"`
}

// DefaultContent returns the built-in copy.
func DefaultContent() *Copy {
	var c Copy
	if err := yaml.Unmarshal(defaultContent, &c); err != nil {
		panic(fmt.Sprintf("site: invalid embedded content: %v", err))
	}
	return &c
}

// LoadContent reads copy from path on top of the built-in copy, so a file
// only needs the keys it changes. An empty path returns the defaults.
func LoadContent(path string) (*Copy, error) {
	c := DefaultContent()
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read content file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to parse content file %s: %w", path, err)
	}
	return c, nil
}
