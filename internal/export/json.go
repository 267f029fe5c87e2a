package export

import (
	"encoding/json"
	"fmt"
)

type JSONExporter struct{}

func (e *JSONExporter) Name() string {
	return "json"
}

func (e *JSONExporter) Export(report Report) ([]byte, error) {
	if report.Set == nil {
		return nil, fmt.Errorf("report for %s has no blueprints", report.Source)
	}
	return json.MarshalIndent(report, "", "  ")
}

func NewJSONExporter() Exporter {
	return &JSONExporter{}
}
