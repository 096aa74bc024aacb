package broker

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"StockSignal/internal/model"
)

// LoadState reads the portfolio from a JSON file. Returns a zero state if the
// file doesn't exist or no path is configured.
func LoadState(filePath string) (*model.PortfolioState, error) {
	if filePath == "" {
		return &model.PortfolioState{}, nil
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &model.PortfolioState{}, nil
		}
		return nil, err
	}
	var state model.PortfolioState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// SaveState writes the portfolio to a JSON file. An empty path keeps the
// account in memory only.
func SaveState(filePath string, state *model.PortfolioState) error {
	state.UpdatedAt = time.Now()
	if filePath == "" {
		return nil
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}
