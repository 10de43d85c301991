package reports

import (
	"context"
	"fmt"

	"opsflow/internal/domain/compliance"
	"opsflow/internal/domain/inductions"
	"opsflow/internal/domain/licenses"
)

type LicenseLister interface {
	List(ctx context.Context, filter licenses.ListFilter) ([]licenses.License, error)
}

type InductionLister interface {
	List(ctx context.Context, filter inductions.ListFilter) ([]inductions.Induction, error)
}

type Service struct {
	Licenses   LicenseLister
	Inductions InductionLister
	Policy     compliance.Policy
}

func NewService(lics LicenseLister, inds InductionLister, policy compliance.Policy) *Service {
	return &Service{Licenses: lics, Inductions: inds, Policy: policy}
}

func (s *Service) Compliance(ctx context.Context) (*ComplianceReport, error) {
	lics, err := s.Licenses.List(ctx, licenses.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("list licenses: %w", err)
	}
	inds, err := s.Inductions.List(ctx, inductions.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("list inductions: %w", err)
	}
	return BuildCompliance(lics, inds, s.Policy, s.Policy.CurrentTime()), nil
}
