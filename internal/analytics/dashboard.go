package analytics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/harborwell/wellness-backend/internal/domain"
	"github.com/harborwell/wellness-backend/internal/repo"
)

// Dashboard is the combined HR landing view: the 30-day overview plus the
// 7-day engagement series and current risk spread.
type Dashboard struct {
	Overview   *CompanyOverview   `json:"overview"`
	Engagement *EngagementMetrics `json:"engagement"`
	Risk       map[string]int     `json:"risk"`
}

// BuildDashboard composes the landing dashboard from the standing aggregates.
func (s *Service) BuildDashboard(ctx context.Context) (*Dashboard, error) {
	tr := otel.Tracer("analytics/Service")
	ctx, span := tr.Start(ctx, "BuildDashboard", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	overview, err := s.Overview(ctx, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	engagement, err := s.Engagement(ctx, 7)
	if err != nil {
		return nil, err
	}
	assessment, err := s.AssessRisk(ctx, "", "")
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		Overview:   overview,
		Engagement: engagement,
		Risk:       assessment.ByLevel,
	}, nil
}

// DepartmentDemographics is one department's population slice.
type DepartmentDemographics struct {
	Department  string  `json:"department"`
	DisplayName string  `json:"display_name"`
	Employees   int64   `json:"employees"`
	Share       float64 `json:"share"`
}

// Demographics is the active-population breakdown by department and role.
type Demographics struct {
	TotalEmployees int64                    `json:"total_employees"`
	Departments    []DepartmentDemographics `json:"departments"`
	Roles          map[string]int64         `json:"roles"`
}

// BuildDemographics reports active head count by department and role.
func (s *Service) BuildDemographics(ctx context.Context) (*Demographics, error) {
	tr := otel.Tracer("analytics/Service")
	ctx, span := tr.Start(ctx, "BuildDemographics", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	total, err := repo.CountActiveUsers(ctx, s.DB, "")
	if err != nil {
		return nil, err
	}
	out := &Demographics{
		TotalEmployees: total,
		Departments:    []DepartmentDemographics{},
		Roles:          map[string]int64{},
	}

	deptRows := []struct {
		Department string
		N          int64
	}{}
	if err := s.DB.WithContext(ctx).
		Model(&domain.User{}).
		Where("active = ?", true).
		Select("department, COUNT(*) AS n").
		Group("department").
		Order("department asc").
		Scan(&deptRows).Error; err != nil {
		return nil, err
	}
	for _, r := range deptRows {
		out.Departments = append(out.Departments, DepartmentDemographics{
			Department:  r.Department,
			DisplayName: DisplayName(r.Department),
			Employees:   r.N,
			Share:       round1(percentage(r.N, total)),
		})
	}

	roleRows := []struct {
		Role string
		N    int64
	}{}
	if err := s.DB.WithContext(ctx).
		Model(&domain.User{}).
		Where("active = ?", true).
		Select("role, COUNT(*) AS n").
		Group("role").
		Scan(&roleRows).Error; err != nil {
		return nil, err
	}
	for _, r := range roleRows {
		out.Roles[r.Role] = r.N
	}
	return out, nil
}

// Export dataset names.
const (
	ExportCheckIns  = "checkins"
	ExportEmployees = "employees"
	ExportSummary   = "summary"
)

// ExportRow pairs a dataset name with its JSON-serializable payload.
type ExportRow struct {
	Type        string `json:"type"`
	GeneratedAt string `json:"generated_at"`
	Data        any    `json:"data"`
}

// Export returns one of the supported datasets for the window as a
// JSON-ready structure.
func (s *Service) Export(ctx context.Context, exportType string, from, to time.Time) (*ExportRow, error) {
	tr := otel.Tracer("analytics/Service")
	ctx, span := tr.Start(ctx, "Export",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("export.type", exportType)),
	)
	defer span.End()

	from, to, err := s.normalizeWindow(from, to)
	if err != nil {
		return nil, err
	}
	out := &ExportRow{Type: exportType, GeneratedAt: s.now().UTC().Format(time.RFC3339)}

	switch exportType {
	case ExportCheckIns:
		var rows []domain.CheckIn
		if err := s.DB.WithContext(ctx).
			Joins("JOIN users ON users.id = check_ins.user_id").
			Where("users.active = ?", true).
			Where("check_ins.day >= ? AND check_ins.day <= ?", from.UTC().Format("2006-01-02"), to.UTC().Format("2006-01-02")).
			Order("check_ins.day asc, check_ins.user_id asc").
			Find(&rows).Error; err != nil {
			return nil, err
		}
		out.Data = rows
	case ExportEmployees:
		users, err := repo.ListActiveUsers(ctx, s.DB, "")
		if err != nil {
			return nil, err
		}
		type employeeExport struct {
			domain.User
			State *domain.WellnessState `json:"state"`
		}
		rows := make([]employeeExport, 0, len(users))
		for _, u := range users {
			st, err := repo.GetWellnessState(ctx, s.DB, u.ID)
			if err != nil {
				return nil, err
			}
			rows = append(rows, employeeExport{User: u, State: st})
		}
		out.Data = rows
	case ExportSummary:
		overview, err := s.Overview(ctx, from, to)
		if err != nil {
			return nil, err
		}
		out.Data = overview
	default:
		return nil, ErrUnknownExportType
	}
	return out, nil
}
