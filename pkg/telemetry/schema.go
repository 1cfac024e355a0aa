package telemetry

import (
	"github.com/invopop/jsonschema"

	"github.com/dmitrymomot/adaptive/pkg/clienthints"
)

// ReportSchemaID identifies the beacon report schema.
const ReportSchemaID = "https://github.com/dmitrymomot/adaptive/report.schema.json"

// SamplesSchemaID identifies the samples batch schema.
const SamplesSchemaID = "https://github.com/dmitrymomot/adaptive/samples.schema.json"

// ReportSchema describes the JSON body accepted by POST /report.
func ReportSchema() *jsonschema.Schema {
	s := reflector().Reflect(&clienthints.Report{})
	s.ID = ReportSchemaID
	s.Title = "Device report"
	s.Description = "Values only page script can read, posted once after load."
	return s
}

// SamplesSchema describes the JSON body accepted by POST /samples.
func SamplesSchema() *jsonschema.Schema {
	s := reflector().Reflect(&Samples{})
	s.ID = SamplesSchemaID
	s.Title = "Runtime samples"
	s.Description = "Frame timestamps, memory and connection readings."
	return s
}

func reflector() *jsonschema.Reflector {
	return &jsonschema.Reflector{
		DoNotReference: true,
	}
}
