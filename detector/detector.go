// Package detector holds the stateless behavior analyzers. Detectors
// score one category of abusive behavior; they may update their own
// cache windows but never touch trust records or apply punishments.
package detector

import "trust-guard/model"

type Detector interface {
	Name() string
	Detect(dctx *model.DetectionContext) (*model.DetectionResult, error)
}
