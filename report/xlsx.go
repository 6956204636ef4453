// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package report

import (
	"context"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/somatic/cohort"
	"github.com/xuri/excelize/v2"
)

// NewWorkbook builds the xlsx workbook of r.
func NewWorkbook(r *cohort.Report) (*excelize.File, error) {
	xlsx := excelize.NewFile()
	for i, sheet := range Sheets(r) {
		if i == 0 {
			if err := xlsx.SetSheetName(xlsx.GetSheetName(0), sheet.Name); err != nil {
				return nil, err
			}
		} else if _, err := xlsx.NewSheet(sheet.Name); err != nil {
			return nil, err
		}
		if err := xlsx.SetSheetRow(sheet.Name, "A1", &Columns); err != nil {
			return nil, err
		}
		for j := range sheet.Rows {
			cell, err := excelize.CoordinatesToCellName(1, j+2)
			if err != nil {
				return nil, err
			}
			line := values(&sheet.Rows[j])
			if err := xlsx.SetSheetRow(sheet.Name, cell, &line); err != nil {
				return nil, err
			}
		}
	}
	return xlsx, nil
}

// WriteXLSX writes r as an xlsx workbook.
func WriteXLSX(ctx context.Context, path string, r *cohort.Report) error {
	xlsx, err := NewWorkbook(r)
	if err != nil {
		return errors.E(err, "building workbook")
	}
	defer xlsx.Close() // nolint: errcheck
	out, err := file.Create(ctx, path)
	if err != nil {
		return err
	}
	if _, err := xlsx.WriteTo(out.Writer(ctx)); err != nil {
		out.Discard(ctx)
		return errors.E(err, "writing", path)
	}
	if err := out.Close(ctx); err != nil {
		return err
	}
	log.Printf("report: wrote %s", path)
	return nil
}
