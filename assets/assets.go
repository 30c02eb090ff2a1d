// Package assets embeds the files shipped inside the binaries.
package assets

import (
	_ "embed"
)

// ModelFileName is the name of the packaged Naive Bayes artifact.
const ModelFileName = "symptom_model_nb_v1.json"

// SymptomModel holds the packaged Naive Bayes artifact.
//
//go:embed symptom_model_nb_v1.json
var SymptomModel []byte
