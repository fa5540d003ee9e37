package contractkit

import "encoding/json"

type ValidationResult struct {
	Success  bool                   `json:"success"`
	Errors   []string               `json:"errors"`
	Warnings []string               `json:"warnings"`
	Details  map[string]interface{} `json:"details,omitempty"`
}

type MockResult struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Type    string          `json:"type"`
}

type ContractList struct {
	Contracts []string `json:"contracts"`
}
