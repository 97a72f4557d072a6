package service

import (
	"bytes"
	"context"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"academia/backend/internal/model"
	apperrors "academia/backend/pkg/errors"
)

var studentExportHeaders = []string{"Session", "Name", "Email", "Roll", "Phone", "Avatar"}

// ExportGrouped 按学年分 Sheet 导出学生名单，组内按 session 排列
func (s *studentService) ExportGrouped(ctx context.Context) ([]byte, error) {
	groups, err := s.GroupByYearAndSession(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	rows := make(map[string]int, len(model.Years))
	for i, year := range model.Years {
		if i == 0 {
			// 复用默认 Sheet1
			if err := f.SetSheetName("Sheet1", year); err != nil {
				return nil, s.exportError(err)
			}
		} else if _, err := f.NewSheet(year); err != nil {
			return nil, s.exportError(err)
		}

		for col, h := range studentExportHeaders {
			f.SetCellValue(year, cell(col+1, 1), h)
		}
		f.SetCellStyle(year, "A1", cell(len(studentExportHeaders), 1), headerStyle)
		f.SetColWidth(year, "A", "A", 12)
		f.SetColWidth(year, "B", "C", 28)
		f.SetColWidth(year, "D", "E", 16)
		f.SetColWidth(year, "F", "F", 48)
		rows[year] = 2
	}

	for _, g := range groups {
		sheet := g.ID.Year
		if _, ok := rows[sheet]; !ok {
			continue
		}
		for _, st := range g.Students {
			row := rows[sheet]
			avatar := ""
			if st.Avatar != nil {
				avatar = *st.Avatar
			}
			for col, v := range []string{g.ID.Session, st.Name, st.Email, st.Roll, st.Phone, avatar} {
				f.SetCellValue(sheet, cell(col+1, row), v)
			}
			rows[sheet] = row + 1
		}
	}
	f.SetActiveSheet(0)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, s.exportError(err)
	}
	return buf.Bytes(), nil
}

func (s *studentService) exportError(err error) error {
	s.logger.Error("生成 Excel 失败", zap.Error(err))
	return apperrors.Internal("Failed to export students", err)
}

// cell 列号从 1 开始
func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
