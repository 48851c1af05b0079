package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/exam-timetabler/pkg/core/services"
	"github.com/jakechorley/exam-timetabler/pkg/db"
)

// ImportDataCmd creates the importData command
func ImportDataCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "importData <dataset_file>",
		Short: "Replace the postgres dataset with the contents of a YAML or JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			writer, ok := app.Store.(db.DatasetWriter)
			if !ok {
				return fmt.Errorf("importData needs dataset.source set to postgres")
			}

			source, err := db.OpenFileStore(args[0])
			if err != nil {
				return err
			}

			dataset, err := services.ImportData(app.Ctx, source, writer, app.Logger)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Dataset imported!\n\n")
			fmt.Printf("Departments: %d\n", len(dataset.Departments))
			fmt.Printf("Courses:     %d\n", len(dataset.Courses))
			fmt.Printf("Rooms:       %d\n", len(dataset.Rooms))
			fmt.Printf("Constraints: %d\n\n", len(dataset.Constraints))

			return nil
		},
	}
}
