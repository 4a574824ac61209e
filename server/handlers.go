// SPDX-License-Identifier: MIT

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/mlmtest/config"
	"github.com/katalvlaran/mlmtest/distance"
	"github.com/katalvlaran/mlmtest/gower"
	"github.com/katalvlaran/mlmtest/mlm"
	"github.com/katalvlaran/mlmtest/model"
	"github.com/katalvlaran/mlmtest/pvalue"
	"github.com/katalvlaran/mlmtest/sscp"
	"github.com/katalvlaran/mlmtest/statistic"
)

// AnalyzeRequest is the body of POST /v1/analyze.
type AnalyzeRequest struct {
	// Response holds raw observations, or a dissimilarity matrix when
	// Distance is set. A null cell is missing; its observation is excluded.
	Response [][]Cell `json:"response"`
	Distance bool     `json:"distance,omitempty"`

	Method    *distance.Method    `json:"method,omitempty"`
	Transform *distance.Transform `json:"transform,omitempty"`
	Scheme    *sscp.Scheme        `json:"scheme,omitempty"`
	K         int                 `json:"k,omitempty"`
	Subset    []int               `json:"subset,omitempty"`

	Design model.Spec          `json:"design"`
	Data   map[string][]string `json:"data"`
}

// Cell is one response value; JSON null decodes to NaN and back.
type Cell float64

// UnmarshalJSON implements json.Unmarshaler.
func (c *Cell) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*c = Cell(math.NaN())
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*c = Cell(f)

	return nil
}

// MarshalJSON implements json.Marshaler.
func (c Cell) MarshalJSON() ([]byte, error) {
	if math.IsNaN(float64(c)) {
		return []byte("null"), nil
	}

	return json.Marshal(float64(c))
}

// PValueRequest is the body of POST /v1/pvalue.
type PValueRequest struct {
	F      float64   `json:"f"`
	Lambda []float64 `json:"lambda"`
	Df     int       `json:"df"`
	DfE    int       `json:"dfe"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

var errBadRequest = errors.New("bad request")

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	in, err := req.input(s.analysis)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	design, err := req.Design.Build(req.Data)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	opts := append(s.analysis.Options(),
		mlm.WithLogger(*zerolog.Ctx(r.Context())),
		mlm.WithObserver(s.metrics),
	)
	if req.Scheme != nil {
		opts = append(opts, mlm.WithScheme(*req.Scheme))
	}
	if req.K < 0 {
		writeError(w, r, http.StatusBadRequest, fmt.Errorf("k=%d: %w", req.K, errBadRequest))
		return
	}
	if req.K > 0 {
		opts = append(opts, mlm.WithK(req.K))
	}
	if req.Subset != nil {
		opts = append(opts, mlm.WithSubset(req.Subset))
	}

	tbl, err := mlm.Analyze(r.Context(), in, design, opts...)
	if err != nil {
		writeError(w, r, analyzeStatus(err), err)
		return
	}
	writeJSON(w, r, http.StatusOK, tbl)
}

func (s *Server) handlePValue(w http.ResponseWriter, r *http.Request) {
	var req PValueRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	p := s.analysis.PValue
	res, err := pvalue.Asymptotic(req.F, req.Lambda, req.Df, req.DfE,
		pvalue.WithInitialAccuracy(p.InitialAccuracy),
		pvalue.WithLimit(p.Limit),
		pvalue.WithMaxSteps(p.MaxSteps),
	)
	s.metrics.ObservePValue("", res, err)
	switch {
	case errors.Is(err, pvalue.ErrConvergence):
		writeError(w, r, http.StatusUnprocessableEntity, err)
		return
	case err != nil:
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}

	return nil
}

// input converts the request matrix into an mlm.ResponseInput.
func (req AnalyzeRequest) input(defaults config.Analysis) (mlm.ResponseInput, error) {
	n := len(req.Response)
	if n == 0 {
		return nil, fmt.Errorf("empty response: %w", errBadRequest)
	}
	p := len(req.Response[0])
	if p == 0 {
		return nil, fmt.Errorf("response has no columns: %w", errBadRequest)
	}
	data := make([]float64, 0, n*p)
	for i, row := range req.Response {
		if len(row) != p {
			return nil, fmt.Errorf("response row %d has %d values, want %d: %w", i, len(row), p, errBadRequest)
		}
		for _, c := range row {
			data = append(data, float64(c))
		}
	}
	M := mat.NewDense(n, p, data)
	if req.Distance {
		return mlm.Distance(M), nil
	}

	method, transform := defaults.Method, defaults.Transform
	if req.Method != nil {
		method = *req.Method
	}
	if req.Transform != nil {
		transform = *req.Transform
	}

	return mlm.Raw(M, method).WithTransform(transform), nil
}

func analyzeStatus(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return 499
	case errors.Is(err, gower.ErrProjection):
		return http.StatusUnprocessableEntity
	case errors.Is(err, gower.ErrEigenFailed), errors.Is(err, statistic.ErrEigenFailed):
		return http.StatusInternalServerError
	}

	return http.StatusBadRequest
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	writeJSON(w, r, status, ErrorResponse{
		Error:     err.Error(),
		RequestID: w.Header().Get(RequestIDHeader),
	})
}
