package reports

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"bitbucket.org/mmagritech/farm_backend/config"
	"bitbucket.org/mmagritech/farm_backend/mobilesync"
	"bitbucket.org/mmagritech/farm_backend/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler serves XLSX exports over the actor's ownership scope.
type Handler struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewHandler(db *gorm.DB, logger *logrus.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

func (h *Handler) scopeFarmIds(c *gin.Context) ([]int, bool) {
	ctx := c.Request.Context()
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return nil, false
	}
	role, _ := utils.GetRoleFromContext(ctx)
	scope, err := mobilesync.BuildScope(ctx, h.db, mobilesync.Actor{ID: userId, Role: role})
	if err != nil {
		config.LogError(h.logger, "reports", "scopeFarmIds", "", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "report failed"})
		return nil, false
	}
	return scope.FarmIds, true
}

type livestockRegisterRow struct {
	TagNumber string
	Name      string
	Species   string
	Breed     string
	Gender    string
	Status    string
	FarmName  string
	ShedName  string
}

func getLivestockRegister(ctx context.Context, db *gorm.DB, farmIds []int) ([]livestockRegisterRow, error) {
	var rows []livestockRegisterRow
	if len(farmIds) == 0 {
		return rows, nil
	}
	sql := `
SELECT
    l.tag_number,
    l.name,
    l.species,
    l.breed,
    l.gender,
    l.status,
    farms.name AS farm_name,
    sheds.name AS shed_name
FROM
    livestock l
    JOIN farms ON farms.id = l.farm_id
    LEFT JOIN sheds ON sheds.id = l.shed_id
WHERE
    l.farm_id IN (?)
    AND l.status <> 'removed'
ORDER BY
    farms.name, l.tag_number;
`
	if err := db.WithContext(ctx).Raw(sql, farmIds).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// LivestockRegister handles GET /api/reports/livestock.xlsx.
func (h *Handler) LivestockRegister(c *gin.Context) {
	farmIds, ok := h.scopeFarmIds(c)
	if !ok {
		return
	}
	data, err := getLivestockRegister(c.Request.Context(), h.db, farmIds)
	if err != nil {
		config.LogError(h.logger, "reports", "LivestockRegister", "", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "report failed"})
		return
	}

	f := excelize.NewFile()
	sheet := "Sheet1"

	f.SetCellValue(sheet, "A1", "TagNumber")
	f.SetCellValue(sheet, "B1", "Name")
	f.SetCellValue(sheet, "C1", "Species")
	f.SetCellValue(sheet, "D1", "Breed")
	f.SetCellValue(sheet, "E1", "Gender")
	f.SetCellValue(sheet, "F1", "Status")
	f.SetCellValue(sheet, "G1", "Farm")
	f.SetCellValue(sheet, "H1", "Shed")

	for i, d := range data {
		row := fmt.Sprint(i + 2)
		f.SetCellValue(sheet, "A"+row, d.TagNumber)
		f.SetCellValue(sheet, "B"+row, d.Name)
		f.SetCellValue(sheet, "C"+row, d.Species)
		f.SetCellValue(sheet, "D"+row, d.Breed)
		f.SetCellValue(sheet, "E"+row, d.Gender)
		f.SetCellValue(sheet, "F"+row, d.Status)
		f.SetCellValue(sheet, "G"+row, d.FarmName)
		f.SetCellValue(sheet, "H"+row, d.ShedName)
	}

	writeWorkbook(c, f, "livestock-register.xlsx")
}

type milkProductionRow struct {
	TagNumber    string
	FarmName     string
	MilkingDate  string
	Session      string
	TotalLiters  decimal.Decimal
	MilkingCount int
}

func getMilkProduction(ctx context.Context, db *gorm.DB, farmIds []int) ([]milkProductionRow, error) {
	var rows []milkProductionRow
	if len(farmIds) == 0 {
		return rows, nil
	}
	sql := `
SELECT
    l.tag_number,
    farms.name AS farm_name,
    DATE(m.event_date) AS milking_date,
    m.session,
    SUM(m.quantity_liters) AS total_liters,
    COUNT(m.id) AS milking_count
FROM
    milkings m
    JOIN livestock l ON l.id = m.livestock_id
    JOIN farms ON farms.id = m.farm_id
WHERE
    m.farm_id IN (?)
GROUP BY
    l.tag_number, farms.name, DATE(m.event_date), m.session
ORDER BY
    milking_date DESC, l.tag_number;
`
	if err := db.WithContext(ctx).Raw(sql, farmIds).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// MilkProduction handles GET /api/reports/milk.xlsx.
func (h *Handler) MilkProduction(c *gin.Context) {
	farmIds, ok := h.scopeFarmIds(c)
	if !ok {
		return
	}
	data, err := getMilkProduction(c.Request.Context(), h.db, farmIds)
	if err != nil {
		config.LogError(h.logger, "reports", "MilkProduction", "", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "report failed"})
		return
	}

	f := excelize.NewFile()
	sheet := "Sheet1"

	f.SetCellValue(sheet, "A1", "TagNumber")
	f.SetCellValue(sheet, "B1", "Farm")
	f.SetCellValue(sheet, "C1", "Date")
	f.SetCellValue(sheet, "D1", "Session")
	f.SetCellValue(sheet, "E1", "Liters")
	f.SetCellValue(sheet, "F1", "Milkings")

	for i, d := range data {
		row := fmt.Sprint(i + 2)
		f.SetCellValue(sheet, "A"+row, d.TagNumber)
		f.SetCellValue(sheet, "B"+row, d.FarmName)
		f.SetCellValue(sheet, "C"+row, d.MilkingDate)
		f.SetCellValue(sheet, "D"+row, d.Session)
		f.SetCellValue(sheet, "E"+row, d.TotalLiters)
		f.SetCellValue(sheet, "F"+row, d.MilkingCount)
	}

	writeWorkbook(c, f, "milk-production.xlsx")
}

func writeWorkbook(c *gin.Context, f *excelize.File, filename string) {
	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}
