package service

import (
	"context"

	"alcyxob/fitness-scheduler/internal/domain"
	"alcyxob/fitness-scheduler/internal/repository"
)

// repositoryAuditSink persists audit records through the audit repository.
type repositoryAuditSink struct {
	repo repository.AuditRepository
}

// NewRepositoryAuditSink adapts an AuditRepository into a safety audit sink.
func NewRepositoryAuditSink(repo repository.AuditRepository) *repositoryAuditSink {
	return &repositoryAuditSink{repo: repo}
}

func (s *repositoryAuditSink) Record(ctx context.Context, record domain.AuditRecord) error {
	return s.repo.Append(ctx, record)
}
