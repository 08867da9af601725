package config

import (
	"context"
	"strings"

	"bitbucket.org/mmagritech/farm_backend/appctx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FarmGuardPlugin enforces per-farmer isolation by automatically scoping
// queries/updates/deletes to the request's farmer_id when the model has a farmer_id column.
//
// NOTE:
// - This does NOT apply to Raw SQL queries. Those must include farmer_id manually.
// - Vet/admin bypass is explicit via context flags: vets see assigned farms through
//   scope lists built by the sync layer, not through this guard.
type FarmGuardPlugin struct{}

func NewFarmGuardPlugin() *FarmGuardPlugin { return &FarmGuardPlugin{} }

func (p *FarmGuardPlugin) Name() string { return "farm_guard" }

func (p *FarmGuardPlugin) Initialize(db *gorm.DB) error {
	if err := db.Callback().Query().Before("gorm:query").Register("farm_guard:query", farmGuardCallback); err != nil {
		return err
	}
	if err := db.Callback().Row().Before("gorm:row").Register("farm_guard:row", farmGuardCallback); err != nil {
		return err
	}
	if err := db.Callback().Update().Before("gorm:update").Register("farm_guard:update", farmGuardCallback); err != nil {
		return err
	}
	if err := db.Callback().Delete().Before("gorm:delete").Register("farm_guard:delete", farmGuardCallback); err != nil {
		return err
	}
	return nil
}

func farmGuardCallback(db *gorm.DB) {
	if db == nil || db.Statement == nil {
		return
	}
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	if shouldBypassFarmScope(ctx) {
		return
	}
	farmerID := farmerIdFromContext(ctx)
	if farmerID == 0 {
		return
	}

	// Only apply if the current model/table includes a farmer_id column.
	if db.Statement.Schema == nil {
		return
	}
	hasFarmerID := false
	for _, f := range db.Statement.Schema.Fields {
		if strings.EqualFold(f.DBName, "farmer_id") {
			hasFarmerID = true
			break
		}
	}
	if !hasFarmerID {
		return
	}

	// Don't duplicate an explicit scope filter.
	if whereHasFarmerID(db.Statement.Clauses["WHERE"]) {
		return
	}

	db.Statement.AddClause(clause.Where{
		Exprs: []clause.Expression{
			clause.Eq{
				Column: clause.Column{Table: db.Statement.Table, Name: "farmer_id"},
				Value:  farmerID,
			},
		},
	})
}

func farmerIdFromContext(ctx context.Context) int {
	role, _ := ctx.Value(appctx.ContextKeyRole).(string)
	if role != "farmer" {
		return 0
	}
	if v, ok := ctx.Value(appctx.ContextKeyUserId).(int); ok && v > 0 {
		return v
	}
	return 0
}

func shouldBypassFarmScope(ctx context.Context) bool {
	if v, ok := ctx.Value(appctx.ContextKeySkipFarmScope).(bool); ok && v {
		return true
	}
	if v, ok := ctx.Value(appctx.ContextKeyIsAdmin).(bool); ok && v {
		return true
	}
	return false
}

func whereHasFarmerID(c clause.Clause) bool {
	if c.Expression == nil {
		return false
	}
	w, ok := c.Expression.(clause.Where)
	if !ok {
		return false
	}
	for _, e := range w.Exprs {
		if exprHasFarmerID(e) {
			return true
		}
	}
	return false
}

func exprHasFarmerID(e clause.Expression) bool {
	switch v := e.(type) {
	case clause.Eq:
		if col, ok := v.Column.(clause.Column); ok {
			return strings.EqualFold(col.Name, "farmer_id")
		}
		if col, ok := v.Column.(string); ok {
			return strings.Contains(strings.ToLower(col), "farmer_id")
		}
	case clause.IN:
		if col, ok := v.Column.(clause.Column); ok {
			return strings.EqualFold(col.Name, "farmer_id")
		}
		if col, ok := v.Column.(string); ok {
			return strings.Contains(strings.ToLower(col), "farmer_id")
		}
	case clause.Expr:
		return strings.Contains(strings.ToLower(v.SQL), "farmer_id")
	case clause.NamedExpr:
		return strings.Contains(strings.ToLower(v.SQL), "farmer_id")
	case clause.AndConditions:
		for _, sub := range v.Exprs {
			if exprHasFarmerID(sub) {
				return true
			}
		}
	case clause.OrConditions:
		for _, sub := range v.Exprs {
			if exprHasFarmerID(sub) {
				return true
			}
		}
	}
	return false
}
