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
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/somatic/cohort"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

func createTable(name string) string {
	cols := make([]string, len(Columns))
	for i, col := range Columns {
		typ := "TEXT"
		if intColumn(i) {
			typ = "INTEGER"
		}
		cols[i] = fmt.Sprintf("%q %s NOT NULL", col, typ)
	}
	return fmt.Sprintf("CREATE TABLE %q (%s)", name, strings.Join(cols, ", "))
}

func insertRow(name string) string {
	marks := strings.TrimSuffix(strings.Repeat("?,", len(Columns)), ",")
	return fmt.Sprintf("INSERT INTO %q VALUES (%s)", name, marks)
}

// WriteSQLite writes r to a new sqlite database at path, one table per
// sheet, in a single transaction. Path must be a local file; an existing
// file is replaced only once the database is complete.
func WriteSQLite(ctx context.Context, path string, r *cohort.Report) (err error) {
	tmp := path + ".tmp"
	if err = os.Remove(tmp); err != nil && !os.IsNotExist(err) {
		return err
	}
	db, err := sql.Open("sqlite", tmp)
	if err != nil {
		return errors.E(err, "open sqlite", tmp)
	}
	defer func() {
		if e := db.Close(); e != nil && err == nil {
			err = e
		}
		if err != nil {
			_ = os.Remove(tmp)
			return
		}
		if err = os.Rename(tmp, path); err == nil {
			log.Printf("report: wrote %s", path)
		}
	}()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	for _, sheet := range Sheets(r) {
		if _, err = tx.ExecContext(ctx, createTable(sheet.Name)); err != nil {
			return errors.E(err, "create table", sheet.Name)
		}
		var stmt *sql.Stmt
		if stmt, err = tx.PrepareContext(ctx, insertRow(sheet.Name)); err != nil {
			return err
		}
		for i := range sheet.Rows {
			if _, err = stmt.ExecContext(ctx, values(&sheet.Rows[i])...); err != nil {
				stmt.Close() // nolint: errcheck
				return errors.E(err, "insert into", sheet.Name)
			}
		}
		if err = stmt.Close(); err != nil {
			return err
		}
	}
	return tx.Commit()
}
