package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/spf13/cobra"
)

// Scaffolding for the two file kinds that keep getting added as the schema
// grows. Generated files land in database/ and still need their bodies
// filled in.

type stubData struct {
	Name       string
	StructName string
}

const migrationStub = `package migrations

import (
	"gorm.io/gorm"

	"github.com/agriconnect-ug/agriconnect/pkg/migration"
)

func init() {
	migration.Register("{{.Name}}", &{{.StructName}}{})
}

type {{.StructName}} struct{}

func (m *{{.StructName}}) Up(db *gorm.DB) error {
	// return db.AutoMigrate(&models.Thing{})
	return nil
}

func (m *{{.StructName}}) Down(db *gorm.DB) error {
	// return db.Migrator().DropTable("things")
	return nil
}
`

const seederStub = `package seeders

import (
	"gorm.io/gorm"
)

func init() {
	Register("{{.Name}}", Seed{{.StructName}})
}

func Seed{{.StructName}}(db *gorm.DB) error {
	// insert rows …
	return nil
}
`

// agriconnect make:migration create_payments_table
var makeMigrationCmd = &cobra.Command{
	Use:   "make:migration [name]",
	Short: "Create a new migration file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ts := time.Now().Format("20060102150405")
		slug := strings.ToLower(strings.ReplaceAll(args[0], " ", "_"))
		name := fmt.Sprintf("%s_%s", ts, slug)

		content, err := renderStub("migration", migrationStub, stubData{
			Name:       name,
			StructName: exportedName(slug),
		})
		if err != nil {
			return err
		}
		return writeStub(fmt.Sprintf("database/migrations/%s.go", name), content)
	},
}

// agriconnect make:seeder payments
var makeSeederCmd = &cobra.Command{
	Use:   "make:seeder [name]",
	Short: "Scaffold a new seeder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		slug := strings.ToLower(strings.ReplaceAll(args[0], " ", "_"))
		content, err := renderStub("seeder", seederStub, stubData{
			Name:       slug,
			StructName: exportedName(slug),
		})
		if err != nil {
			return err
		}
		return writeStub(fmt.Sprintf("database/seeders/%s.go", slug), content)
	},
}

// exportedName turns "create_payments_table" into "CreatePaymentsTable".
func exportedName(slug string) string {
	parts := strings.Split(slug, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, "")
}

func renderStub(name, stub string, data stubData) (string, error) {
	t, err := template.New(name).Parse(stub)
	if err != nil {
		return "", fmt.Errorf("parse %s stub: %w", name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s stub: %w", name, err)
	}
	return buf.String(), nil
}

func writeStub(path, content string) error {
	dir := path[:strings.LastIndex(path, "/")]
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("file already exists: %s", path)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return err
	}
	fmt.Printf("✅  Created: %s\n", path)
	return nil
}
