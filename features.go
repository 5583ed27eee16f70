package arthax

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"strings"
)

// Trigger identifiers.
const (
	TriggerAnalyze  = "analyze"
	TriggerCategory = "category"
	TriggerGoal     = "goal"
	TriggerLoan     = "loan"
	TriggerInvest   = "invest"
)

// Features is the trigger table: one entry per analysis feature.
var Features = []Feature{
	{
		Name:           TriggerAnalyze,
		Title:          "Financial Analysis",
		Endpoint:       "analyze_finances",
		DefaultMessage: "Failed to analyze your finances.",
		SuccessMessage: "Financial analysis complete!",
		Loading:        func(Input, string) string { return "Analyzing your finances..." },
		Render:         renderAnalysis,
	},
	{
		Name:     TriggerCategory,
		Title:    "Category Suggestion",
		Endpoint: "suggest_category",
		Fields: []Field{
			{Name: "description", Kind: Text, Message: "Please enter an expense description."},
		},
		DefaultMessage: "Could not suggest a category.",
		SuccessMessage: "Category suggested!",
		Loading:        func(Input, string) string { return "Thinking of a category..." },
		Render:         renderCategory,
	},
	{
		Name:     TriggerGoal,
		Title:    "Goal Breakdown",
		Endpoint: "breakdown_goal",
		Fields: []Field{
			{Name: "goal", Kind: Text, Message: "Please describe your financial goal."},
		},
		DefaultMessage: "Could not break down your goal.",
		SuccessMessage: "Goal breakdown ready!",
		Loading:        func(Input, string) string { return "Breaking down your goal..." },
		Render:         renderGoal,
	},
	{
		Name:     TriggerLoan,
		Title:    "Home Loan Affordability",
		Endpoint: "home_loan_affordability",
		Fields: []Field{
			{Name: "income", Kind: Positive, Message: "Please enter a valid monthly income."},
			{Name: "debt", Kind: NonNegative, Message: "Please enter a valid monthly debt, or leave it empty."},
			{Name: "loan_amount", Kind: Positive, Message: "Please enter a valid loan amount."},
			{Name: "interest_rate", Kind: Positive, Message: "Please enter a valid interest rate."},
			{Name: "term_years", Kind: Positive, Message: "Please enter a valid loan term in years."},
		},
		DefaultMessage: "Could not compute the loan affordability.",
		SuccessMessage: "Loan affordability computed!",
		Loading: func(in Input, currency string) string {
			return fmt.Sprintf("Checking a %s loan over %s years at %s%%...",
				FormatAmount(in.Decimal("loan_amount"), currency),
				in.Decimal("term_years"),
				in.Decimal("interest_rate"))
		},
		Render: renderResult,
	},
	{
		Name:     TriggerInvest,
		Title:    "Lazy Investor Strategy",
		Endpoint: "lazy_investor",
		Fields: []Field{
			{Name: "risk_tolerance", Kind: Freeform, Default: "medium"},
			{Name: "investment_horizon", Kind: Positive, Message: "Please enter a valid investment horizon in years."},
		},
		DefaultMessage: "Could not build an investment strategy.",
		SuccessMessage: "Investment strategy ready!",
		Loading: func(in Input, _ string) string {
			return fmt.Sprintf("Building a %s risk strategy over %s years...",
				in.String("risk_tolerance"), in.Decimal("investment_horizon"))
		},
		Render: renderResult,
	},
}

// FeatureByName looks up the trigger table.
func FeatureByName(name string) (Feature, bool) {
	for _, f := range Features {
		if f.Name == name {
			return f, true
		}
	}
	return Feature{}, false
}

// renderAnalysis shows the spending chart and the insights.
func renderAnalysis(env *Envelope) (View, error) {
	var v View
	if _, ok := env.Raw("plot_image"); ok {
		s, ok := env.String("plot_image")
		if !ok {
			return View{}, errors.New("plot_image is not a string")
		}
		img, err := DecodePNG(s)
		if err != nil {
			return View{}, err
		}
		v.Image = img
	}
	if raw, ok := env.Raw("insights"); ok {
		pairs, err := OrderedPairs(raw)
		if err != nil {
			return View{}, fmt.Errorf("invalid insights: %w", err)
		}
		v.Pairs = pairs
	}
	if v.Image == nil && v.Pairs == nil {
		return View{}, errors.New("neither plot_image nor insights")
	}
	return v, nil
}

// renderCategory shows the suggested label. The backend has been seen
// returning it as "category" instead of "suggestion".
func renderCategory(env *Envelope) (View, error) {
	for _, path := range []string{"$.suggestion", "$.category"} {
		v, err := env.Lookup(path)
		if err != nil {
			continue
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			return View{Text: strings.TrimSpace(s)}, nil
		}
	}
	return View{}, errors.New("no suggestion")
}

// renderGoal shows a plain text breakdown, or the ordered steps.
func renderGoal(env *Envelope) (View, error) {
	raw, ok := env.Raw("breakdown")
	if !ok {
		return View{}, errors.New("no breakdown")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return View{Text: s}, nil
	}
	pairs, err := OrderedPairs(raw)
	if err != nil {
		return View{}, fmt.Errorf("invalid breakdown: %w", err)
	}
	return View{Pairs: pairs, Ordered: true}, nil
}

// renderResult shows the result object verbatim, pretty-printed.
func renderResult(env *Envelope) (View, error) {
	raw, ok := env.Raw("result")
	if !ok {
		return View{}, errors.New("no result")
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return View{}, fmt.Errorf("invalid result: %w", err)
	}
	return View{JSON: buf.String()}, nil
}

// DecodePNG decodes a base64 PNG, optionally given as a data URL.
func DecodePNG(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		i := strings.IndexByte(s, ',')
		if i < 0 {
			return nil, errors.New("invalid data url")
		}
		s = s[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 image: %w", err)
	}
	if _, err := png.DecodeConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("invalid png image: %w", err)
	}
	return data, nil
}

// OrderedPairs reads a flat JSON object keeping the keys in document order.
// String values are unquoted, any other value is kept as compact JSON.
func OrderedPairs(raw json.RawMessage) ([]Pair, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("not a JSON object")
	}
	pairs := []Pair{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		pairs = append(pairs, Pair{Key: key, Value: formatValue(value)})
	}
	return pairs, nil
}

func formatValue(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	var s string
	if len(raw) > 0 && raw[0] == '"' && json.Unmarshal(raw, &s) == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
