package fare

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// HTTPPredictor calls a remote fare model over JSON. The request body is the
// TripContext; the response must carry a positive "fare".
type HTTPPredictor struct {
	URL    string
	Client *http.Client
}

type predictResponse struct {
	Fare float64 `json:"fare"`
}

func (p *HTTPPredictor) Predict(ctx context.Context, trip TripContext) (float64, error) {
	body, err := json.Marshal(trip)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL, bytes.NewBuffer(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("fare predictor returned status %d", resp.StatusCode)
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, err
	}
	if out.Fare <= 0 {
		return 0, fmt.Errorf("fare predictor returned non-positive fare %v", out.Fare)
	}
	return out.Fare, nil
}
