package accounts

import (
	"embed"
	"io/fs"
)

//go:embed data/sql/migrations
var migrationsFS embed.FS

//go:embed data/templates
var templatesFS embed.FS

// GetMigrationsFS returns the migration files for this package
func GetMigrationsFS() embed.FS {
	return migrationsFS
}

// TemplatesFS returns the embedded mail templates rooted at the template
// directory.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(templatesFS, "data/templates")
	if err != nil {
		panic(err)
	}
	return sub
}
