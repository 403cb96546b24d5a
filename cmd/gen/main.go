// Regenerates the type-safe GORM query builders from the persistence models.
// The output directory is not committed; run this after changing a model.
package main

import (
	"passport/internal/infra/persistence/model"

	"gorm.io/gen"
)

func main() {
	g := gen.NewGenerator(gen.Config{
		OutPath: "./internal/infra/persistence/postgres/query",
	})

	g.ApplyBasic(model.UserModel{})

	g.Execute()
}
