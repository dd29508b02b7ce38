package validator_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgvalidator "github.com/ghuser/medtrace/pkg/validator"
)

type transferReq struct {
	BatchID   string `json:"batch_id"       validate:"required,batchid"`
	Recipient string `json:"recipient"      validate:"required,party"`
	Role      string `json:"recipient_role" validate:"required,role"`
	Units     int    `json:"units"          validate:"required,gte=1"`
	Note      string `json:"note,omitempty" validate:"omitempty,max=10"`
}

func valid() transferReq {
	return transferReq{BatchID: "PCM-2026-001", Recipient: "Dist@Example.com ", Role: "distributor", Units: 4}
}

func TestValidate_BatchID(t *testing.T) {
	tests := []struct {
		id    string
		valid bool
	}{
		{"B1", true},
		{"LOT-42-a", true},
		{strings.Repeat("x", 64), true},
		{"B", false},
		{strings.Repeat("x", 65), false},
		{"B 1", false},
		{"B_1", false},
		{"ÄB", false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			r := valid()
			r.BatchID = tt.id
			if err := pkgvalidator.Validate(&r); (err == nil) != tt.valid {
				t.Fatalf("batch id %q: expected valid=%v, got err=%v", tt.id, tt.valid, err)
			}
		})
	}
}

func TestFormatValidationErrors(t *testing.T) {
	r := transferReq{BatchID: "bad id", Recipient: "nope", Role: "WHOLESALER", Units: -1, Note: "far too long"}
	got := pkgvalidator.FormatValidationErrors(pkgvalidator.Validate(&r))

	want := map[string]string{
		"batch_id":       "must be 2-64 letters, digits or hyphens",
		"recipient":      "must be a valid email address",
		"recipient_role": "must be one of MANUFACTURER, DISTRIBUTOR, PHARMACY, CUSTOMER, ADMIN",
		"units":          "must be at least 1",
		"note":           "must be at most 10 characters",
	}
	for field, msg := range want {
		if got[field] != msg {
			t.Errorf("%s: expected %q, got %q", field, msg, got[field])
		}
	}

	if m := pkgvalidator.FormatValidationErrors(pkgvalidator.Validate(&transferReq{})); m["batch_id"] != "is required" {
		t.Errorf("expected a required message, got %q", m["batch_id"])
	}
	if m := pkgvalidator.FormatValidationErrors(http.ErrNoCookie); len(m) != 0 {
		t.Errorf("expected empty map for a non-validation error, got %v", m)
	}
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		limit    int64
		wantOK   bool
		wantCode int
		wantText string
	}{
		{"valid", `{"batch_id":"B1","recipient":"d@y.com","recipient_role":"PHARMACY","units":2}`, 0, true, http.StatusOK, ""},
		{"empty body", ``, 0, false, http.StatusBadRequest, "request body is empty"},
		{"malformed", `{bad json`, 0, false, http.StatusBadRequest, "invalid JSON"},
		{"too large", `{"batch_id":"` + strings.Repeat("x", 200) + `"}`, 64, false, http.StatusRequestEntityTooLarge, "exceeds 64 bytes"},
		{"field rules", `{"batch_id":"B1","units":1}`, 0, false, http.StatusUnprocessableEntity, "recipient"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/api/batches/B1/transfers", strings.NewReader(tt.body))
			if tt.limit > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, tt.limit)
			}

			req, ok := pkgvalidator.ValidateRequest[transferReq](w, r)
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v: %s", tt.wantOK, ok, w.Body.String())
			}
			if ok {
				if req.Units != 2 {
					t.Fatalf("unexpected decode: %+v", req)
				}
				return
			}
			if w.Code != tt.wantCode || !strings.Contains(w.Body.String(), tt.wantText) {
				t.Fatalf("expected %d containing %q, got %d %s", tt.wantCode, tt.wantText, w.Code, w.Body.String())
			}
		})
	}
}

func TestValidateRequest_FieldBody(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"batch_id":"B1","recipient":"x@y.z","recipient_role":"nope","units":1}`))
	if _, ok := pkgvalidator.ValidateRequest[transferReq](w, r); ok {
		t.Fatal("expected failure")
	}
	var body pkgvalidator.ValidationErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "validation failed" || len(body.Fields) != 1 || body.Fields["recipient_role"] == "" {
		t.Fatalf("unexpected body: %+v", body)
	}
}
