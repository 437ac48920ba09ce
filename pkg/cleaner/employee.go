// pkg/cleaner/employee.go
package cleaner

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dfarias/comercial-etl/pkg/config"
	"github.com/dfarias/comercial-etl/pkg/model"
)

// EmployeeStats counts the repairs and drops performed while cleaning the
// employee table. Employees are never dropped for age: the imputation
// cascade ends in an unconditional default.
type EmployeeStats struct {
	RowsIn              int
	RowsOut             int
	DuplicatesRemoved   int
	IDsSynthesized      int
	NamesDefaulted      int
	RolesDefaulted      int
	AgesImputedByRole   int
	AgesImputedGlobally int
	AgesDefaulted       int
}

// EmployeeCleaner normalizes and validates the employee table. It has no
// dependency on the other cleaners.
type EmployeeCleaner struct {
	cfg    *config.CleaningConfig
	logger *zap.Logger
}

// NewEmployeeCleaner creates a new EmployeeCleaner
func NewEmployeeCleaner(cfg *config.CleaningConfig, logger *zap.Logger) *EmployeeCleaner {
	return &EmployeeCleaner{
		cfg:    cfg,
		logger: logger.Named("employee-cleaner"),
	}
}

// Clean deduplicates and repairs the raw employee table.
//
// Duplicate ids keep the first occurrence. Rows without a usable id receive
// a synthesized id continuing from the maximum existing id, assigned in
// original row order. Blank names default to "Funcionário {id}" and blank
// roles to the configured default. Ages outside the valid range, or missing
// entirely, go through the imputation cascade: median of valid same-role
// ages, then the global median, then the configured default.
func (c *EmployeeCleaner) Clean(raw []model.RawEmployee) ([]model.Employee, EmployeeStats, error) {
	stats := EmployeeStats{RowsIn: len(raw)}

	if len(raw) == 0 {
		return nil, stats, ErrEmptyTable
	}

	type pendingRow struct {
		raw      model.RawEmployee
		id       int
		needsID  bool
		age      int
		validAge bool
	}

	// First pass: dedup by id and find the highest existing id. Rows with a
	// blank or unparseable id are kept for synthesis; they cannot collide so
	// they never count as duplicates.
	seen := make(map[int]bool, len(raw))
	maxID := 0
	rows := make([]pendingRow, 0, len(raw))

	for _, r := range raw {
		p := pendingRow{raw: r}

		id, err := toInt(r.ID)
		if err != nil {
			p.needsID = true
		} else {
			if seen[id] {
				stats.DuplicatesRemoved++
				c.logger.Debug("Duplicate employee id removed", zap.Int("id", id))
				continue
			}
			seen[id] = true
			p.id = id
			if id > maxID {
				maxID = id
			}
		}

		if age, err := toInt(r.Age); err == nil && age >= c.cfg.MinAge && age <= c.cfg.MaxAge {
			p.age = age
			p.validAge = true
		}

		rows = append(rows, p)
	}

	// Second pass: synthesize missing ids in original row order so reruns on
	// the same input produce identical tables.
	nextID := maxID + 1
	for i := range rows {
		if rows[i].needsID {
			rows[i].id = nextID
			nextID++
			stats.IDsSynthesized++
			c.logger.Debug("Synthesized employee id", zap.Int("id", rows[i].id))
		}
	}

	// Age context for the cascade: only originally valid ages participate,
	// so imputed values never feed later imputations.
	agesByRole := make(map[string][]int)
	var agesAll []int
	for _, p := range rows {
		if p.validAge {
			role := c.roleOf(p.raw.Role)
			agesByRole[role] = append(agesByRole[role], p.age)
			agesAll = append(agesAll, p.age)
		}
	}

	cascade := []strategy[string, int]{
		{name: strategyMedianByRole, apply: func(role string) (int, bool) {
			ages := agesByRole[role]
			if len(ages) == 0 {
				return 0, false
			}
			return medianInt(ages), true
		}},
		{name: strategyMedianGlobal, apply: func(string) (int, bool) {
			if len(agesAll) == 0 {
				return 0, false
			}
			return medianInt(agesAll), true
		}},
		{name: strategyDefaultAge, apply: func(string) (int, bool) {
			return c.cfg.DefaultAge, true
		}},
	}

	cleaned := make([]model.Employee, 0, len(rows))
	for _, p := range rows {
		employee := model.Employee{
			ID:   p.id,
			Name: strings.TrimSpace(p.raw.Name),
			Role: c.roleOf(p.raw.Role),
		}

		if employee.Name == "" {
			employee.Name = fmt.Sprintf("Funcionário %d", p.id)
			stats.NamesDefaulted++
		}

		if isBlank(p.raw.Role) {
			stats.RolesDefaulted++
		}

		if p.validAge {
			employee.Age = p.age
		} else {
			age, tier, _ := runCascade(cascade, employee.Role)
			employee.Age = age

			switch tier {
			case strategyMedianByRole:
				stats.AgesImputedByRole++
			case strategyMedianGlobal:
				stats.AgesImputedGlobally++
			case strategyDefaultAge:
				stats.AgesDefaulted++
			}

			c.logger.Debug("Imputed employee age",
				zap.Int("id", employee.ID),
				zap.Int("age", age),
				zap.String("strategy", tier))
		}

		cleaned = append(cleaned, employee)
	}

	stats.RowsOut = len(cleaned)

	c.logger.Info("Employee table cleaned",
		zap.Int("rowsIn", stats.RowsIn),
		zap.Int("rowsOut", stats.RowsOut),
		zap.Int("duplicatesRemoved", stats.DuplicatesRemoved),
		zap.Int("idsSynthesized", stats.IDsSynthesized),
		zap.Int("namesDefaulted", stats.NamesDefaulted),
		zap.Int("agesImputedByRole", stats.AgesImputedByRole),
		zap.Int("agesImputedGlobally", stats.AgesImputedGlobally),
		zap.Int("agesDefaulted", stats.AgesDefaulted))

	return cleaned, stats, nil
}

func (c *EmployeeCleaner) roleOf(raw string) string {
	role := strings.TrimSpace(raw)
	if role == "" {
		return c.cfg.DefaultRole
	}
	return role
}
