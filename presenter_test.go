package arthax

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// validValues satisfies the fields of every feature.
var validValues = map[string]Values{
	TriggerAnalyze:  {},
	TriggerCategory: {"description": "Swiggy order 450"},
	TriggerGoal:     {"goal": "Buy a house in 5 years"},
	TriggerLoan:     {"income": "5000", "loan_amount": "200000", "interest_rate": "6.5", "term_years": "20"},
	TriggerInvest:   {"risk_tolerance": "low", "investment_horizon": "10"},
}

func TestPresenters_NoIdentity(t *testing.T) {
	for _, f := range Features {
		t.Run(f.Name, func(t *testing.T) {
			ta := newTestApp(t, replyJSON(t, `{"status":"success"}`))
			if err := ta.Dispatch(context.Background(), f.Name, validValues[f.Name]); err != nil {
				t.Fatalf("Dispatch() unexpected error: %v", err)
			}
			ta.Wait()

			if n := ta.caller.calls(); n != 0 {
				t.Errorf("%d request(s) issued without identity", n)
			}
			if got := ta.toasts.count(KindError); got != 1 || ta.toasts.total() != 1 {
				t.Errorf("got %d error notification(s) out of %d, want exactly 1", got, ta.toasts.total())
			}
			if views := ta.surface.region(f.Name).views; len(views) != 0 {
				t.Errorf("region changed without identity: %v", views)
			}
			p, _ := ta.Presenter(f.Name)
			var ve *ValidationError
			if !errors.As(p.Err(), &ve) {
				t.Errorf("Err() = %v, want a ValidationError", p.Err())
			}
		})
	}
}

func TestPresenters_ApplicationError(t *testing.T) {
	for _, f := range Features {
		for _, tt := range []struct {
			name, body, want string
		}{
			{"message", `{"status":"error","message":"backend says no"}`, "backend says no"},
			{"default", `{"status":"error"}`, f.DefaultMessage},
		} {
			t.Run(f.Name+"/"+tt.name, func(t *testing.T) {
				ta := newTestApp(t, replyJSON(t, tt.body))
				ta.login(t, "9999999999")
				ta.Dispatch(context.Background(), f.Name, validValues[f.Name])
				ta.Wait()

				v, _ := ta.surface.region(f.Name).last()
				if v.Error != tt.want {
					t.Errorf("region error = %q, want %q", v.Error, tt.want)
				}
				if v.IsLoading() {
					t.Error("loading placeholder left on screen")
				}
				if got := ta.toasts.count(KindError); got != 1 || ta.toasts.total() != 1 {
					t.Errorf("got %d error notification(s) out of %d, want exactly 1", got, ta.toasts.total())
				}
			})
		}
	}
}

func TestPresenters_TransportError(t *testing.T) {
	for _, f := range Features {
		t.Run(f.Name, func(t *testing.T) {
			ta := newTestApp(t, replyJSON(t, `<html>`))
			ta.login(t, "9999999999")
			ta.Dispatch(context.Background(), f.Name, validValues[f.Name])
			ta.Wait()

			v, _ := ta.surface.region(f.Name).last()
			if v.Error != MsgNetworkView {
				t.Errorf("region error = %q, want %q", v.Error, MsgNetworkView)
			}
			if ta.toasts.count(KindError) != 1 || ta.toasts.total() != 1 {
				t.Errorf("want exactly one error notification, got %d", ta.toasts.total())
			}
		})
	}
}

func tinyPNG(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestPresenters_Success(t *testing.T) {
	plot := tinyPNG(t)
	tests := []struct {
		trigger string
		body    string
		check   func(t *testing.T, v View)
	}{
		{
			trigger: TriggerAnalyze,
			body:    `{"status":"success","plot_image":"` + plot + `","insights":{"Food":"₹1,639 on Zomato","Investments":"4/10","Savings Rate":0.12}}`,
			check: func(t *testing.T, v View) {
				if len(v.Image) == 0 {
					t.Error("image not decoded")
				}
				want := []Pair{{"Food", "₹1,639 on Zomato"}, {"Investments", "4/10"}, {"Savings Rate", "0.12"}}
				if len(v.Pairs) != len(want) {
					t.Fatalf("pairs = %v, want %v", v.Pairs, want)
				}
				for i := range want {
					if v.Pairs[i] != want[i] {
						t.Errorf("pair %d = %v, want %v", i, v.Pairs[i], want[i])
					}
				}
			},
		},
		{
			trigger: TriggerCategory,
			body:    `{"status":"success","suggestion":"Food & Dining"}`,
			check: func(t *testing.T, v View) {
				if v.Text != "Food & Dining" {
					t.Errorf("text = %q", v.Text)
				}
			},
		},
		{
			trigger: TriggerGoal,
			body:    `{"status":"success","breakdown":{"Step 2":"Save 20%","Step 1":"Open an RD"}}`,
			check: func(t *testing.T, v View) {
				if !v.Ordered || len(v.Pairs) != 2 || v.Pairs[0].Key != "Step 2" || v.Pairs[1].Value != "Open an RD" {
					t.Errorf("steps = %v, ordered = %v", v.Pairs, v.Ordered)
				}
			},
		},
		{
			trigger: TriggerInvest,
			body:    `{"status":"success","result":{"equity":60,"debt":40}}`,
			check: func(t *testing.T, v View) {
				want := "{\n  \"equity\": 60,\n  \"debt\": 40\n}"
				if v.JSON != want {
					t.Errorf("json = %q, want %q", v.JSON, want)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.trigger, func(t *testing.T) {
			ta := newTestApp(t, replyJSON(t, tt.body))
			ta.login(t, "9999999999")
			ta.Dispatch(context.Background(), tt.trigger, validValues[tt.trigger])
			ta.Wait()

			views := ta.surface.region(tt.trigger).views
			if len(views) != 2 || !views[0].IsLoading() {
				t.Fatalf("views = %v, want a placeholder then the result", views)
			}
			if views[1].IsLoading() || views[1].Error != "" {
				t.Fatalf("final view = %+v", views[1])
			}
			tt.check(t, views[1])
			if ta.toasts.count(KindSuccess) != 1 || ta.toasts.total() != 1 {
				t.Errorf("want exactly one success notification, got %d", ta.toasts.total())
			}
			if got := ta.caller.payload(t, 0)["user_id"]; got != "9999999999" {
				t.Errorf("user_id = %v", got)
			}
		})
	}
}

func TestLoanPresenter(t *testing.T) {
	ta := newTestApp(t, replyJSON(t, `{"status":"success","result":{"approved":true}}`))
	ta.login(t, "9999999999")
	ta.Dispatch(context.Background(), TriggerLoan, Values{
		"income":        "5000",
		"loan_amount":   "200000",
		"interest_rate": "6.5",
		"term_years":    "20",
	})
	ta.Wait()

	v, _ := ta.surface.region(TriggerLoan).last()
	if want := "{\n  \"approved\": true\n}"; v.JSON != want {
		t.Errorf("region = %q, want %q", v.JSON, want)
	}

	p := ta.caller.payload(t, 0)
	want := map[string]any{
		"income":        5000.0,
		"debt":          0.0,
		"loan_amount":   200000.0,
		"interest_rate": 6.5,
		"term_years":    20.0,
		"user_id":       "9999999999",
	}
	for k, w := range want {
		if p[k] != w {
			t.Errorf("payload[%q] = %v (%T), want %v", k, p[k], p[k], w)
		}
	}
	if ta.caller.requests[0].Endpoint != "home_loan_affordability" {
		t.Errorf("endpoint = %q", ta.caller.requests[0].Endpoint)
	}
}

func TestPresenters_InvalidInput(t *testing.T) {
	tests := []struct {
		trigger string
		values  Values
		field   string
	}{
		{TriggerCategory, Values{"description": "  "}, "description"},
		{TriggerGoal, Values{}, "goal"},
		{TriggerLoan, Values{"income": "0", "loan_amount": "200000", "interest_rate": "6.5", "term_years": "20"}, "income"},
		{TriggerLoan, Values{"income": "5000", "debt": "-1", "loan_amount": "200000", "interest_rate": "6.5", "term_years": "20"}, "debt"},
		{TriggerLoan, Values{"income": "5000", "loan_amount": "lots", "interest_rate": "6.5", "term_years": "20"}, "loan_amount"},
		{TriggerLoan, Values{"income": "5000", "loan_amount": "200000", "interest_rate": "-6.5", "term_years": "20"}, "interest_rate"},
		{TriggerLoan, Values{"income": "5000", "loan_amount": "200000", "interest_rate": "6.5"}, "term_years"},
		{TriggerInvest, Values{"investment_horizon": "0"}, "investment_horizon"},
	}
	for _, tt := range tests {
		t.Run(tt.trigger+"/"+tt.field, func(t *testing.T) {
			ta := newTestApp(t, replyJSON(t, `{"status":"success"}`))
			ta.login(t, "9999999999")
			ta.Dispatch(context.Background(), tt.trigger, tt.values)
			ta.Wait()

			if ta.caller.calls() != 0 {
				t.Error("request issued with invalid input")
			}
			if ta.toasts.count(KindError) != 1 {
				t.Errorf("want exactly one error notification, got %d", ta.toasts.total())
			}
			p, _ := ta.Presenter(tt.trigger)
			var ve *ValidationError
			if !errors.As(p.Err(), &ve) || ve.Field != tt.field {
				t.Errorf("Err() = %v, want a ValidationError on %q", p.Err(), tt.field)
			}
		})
	}
}

func TestPresenters_UnexpectedShape(t *testing.T) {
	ta := newTestApp(t, replyJSON(t, `{"status":"success","plot_image":"not base64!"}`))
	ta.login(t, "9999999999")
	ta.Dispatch(context.Background(), TriggerAnalyze, nil)
	ta.Wait()

	f, _ := FeatureByName(TriggerAnalyze)
	v, _ := ta.surface.region(TriggerAnalyze).last()
	if v.Error != f.DefaultMessage {
		t.Errorf("region error = %q, want %q", v.Error, f.DefaultMessage)
	}
	if ta.toasts.count(KindError) != 1 || ta.toasts.total() != 1 {
		t.Errorf("want exactly one error notification")
	}
}

func TestPresenters_LoginRequired(t *testing.T) {
	ta := newTestApp(t, replyJSON(t, `{"status":"login_required","message":"MCP login required.","login_url":"http://localhost:8080/mockWebPage"}`))
	ta.login(t, "9999999999")
	ta.Dispatch(context.Background(), TriggerGoal, Values{"goal": "retire early"})
	ta.Wait()

	v, _ := ta.surface.region(TriggerGoal).last()
	if v.Error != "MCP login required." {
		t.Errorf("region error = %q", v.Error)
	}
	if v.Hint == "" {
		t.Error("login url not surfaced")
	}
}

func TestPresenters_ErrorDetails(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "details",
			body: `{"status":"error","message":"Could not suggest category","details":"quota exceeded"}`,
			want: "quota exceeded",
		},
		{
			name: "login url wins",
			body: `{"status":"error","message":"MCP login required.","details":"no session","login_url":"http://localhost:8080/login"}`,
			want: fmt.Sprintf(MsgLoginHint, "http://localhost:8080/login"),
		},
		{
			name: "none",
			body: `{"status":"error","message":"Could not suggest category"}`,
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta := newTestApp(t, replyJSON(t, tt.body))
			ta.login(t, "9999999999")
			ta.Dispatch(context.Background(), TriggerCategory, Values{"description": "uber ride"})
			ta.Wait()

			v, _ := ta.surface.region(TriggerCategory).last()
			if v.Hint != tt.want {
				t.Errorf("region hint = %q, want %q", v.Hint, tt.want)
			}
			if ta.toasts.count(KindError) != 1 || ta.toasts.total() != 1 {
				t.Errorf("want exactly one error notification")
			}
		})
	}
}

func TestDispatch_UnknownTrigger(t *testing.T) {
	ta := newTestApp(t, replyJSON(t, `{"status":"success"}`))
	if err := ta.Dispatch(context.Background(), "voice", nil); !errors.Is(err, ErrUnknownTrigger) {
		t.Errorf("Dispatch(voice) = %v, want ErrUnknownTrigger", err)
	}
}
