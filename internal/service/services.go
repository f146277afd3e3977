package service

import (
	"LearnSphere/internal/service/assessment"
	"LearnSphere/internal/service/classroom"
	"LearnSphere/internal/service/enrollment"
	"LearnSphere/internal/service/identity"
)

type Collection struct {
	Allocator  *classroom.AllocatorService
	Enrollment *enrollment.Service
	Assessment *assessment.Service
	Identity   *identity.Manager
}
