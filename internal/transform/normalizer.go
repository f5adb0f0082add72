// Package transform turns raw extracts into the reporting model.
package transform

import (
	"go.uber.org/zap"

	"gerencial/internal/etlerr"
)

type Normalizer struct {
	rules Rules
	log   *zap.Logger
}

func NewNormalizer(rules Rules, log *zap.Logger) *Normalizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Normalizer{rules: rules, log: log}
}

func (n *Normalizer) Rules() Rules { return n.rules }

func stageErr(stage etlerr.Stage, company string, err error) error {
	if err == nil {
		return nil
	}
	return etlerr.NewTransformError(stage, company, err)
}
