package http

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestJSONResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewJSONResponse().
		Body(map[string]int{"periods": 2}).
		Write(w)

	if w.Code != http.StatusOK {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if w.Body.String() != "{\"periods\":2}\n" {
		t.Errorf("Body = %q", w.Body.String())
	}
}

func TestJSONResponseBuilder_Created(t *testing.T) {
	w := httptest.NewRecorder()

	NewJSONResponse().
		Created("/api/debts/1").
		Header("X-Extra", "yes").
		Body(struct{}{}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d", w.Code)
	}
	if w.Header().Get("Location") != "/api/debts/1" || w.Header().Get("X-Extra") != "yes" {
		t.Errorf("headers = %v", w.Header())
	}
}

func TestJSONResponseBuilder_NoContent(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusNoContent).Body("ignored").Write(w)

	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Errorf("code = %d body = %q", w.Code, w.Body.String())
	}
}

func TestJSONResponseBuilder_EncodeFailure(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Body(map[string]float64{"bad": math.NaN()}).Write(w)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("code = %d", w.Code)
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name    string
		builder *JSONResponseBuilder
		code    int
		message string
	}{
		{"bad request", BadRequestError("bad strategy", "r1"), http.StatusBadRequest, "bad strategy"},
		{"unprocessable", UnprocessableEntityError("invalid amount", "r1"), http.StatusUnprocessableEntity, "invalid amount"},
		{"not found", NotFoundError("debt x: not found", "r1"), http.StatusNotFound, "debt x: not found"},
		{"internal", InternalServerError("r1"), http.StatusInternalServerError, "internal error"},
		{"rate limit", TooManyRequestsError("r1"), http.StatusTooManyRequests, "rate limit exceeded, try again later"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)

			if w.Code != tt.code {
				t.Errorf("code = %d, want %d", w.Code, tt.code)
			}
			var body ErrorBody
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body.Error != tt.message || body.RequestID != "r1" {
				t.Errorf("body = %+v", body)
			}
		})
	}
}
