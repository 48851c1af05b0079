package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jakechorley/exam-timetabler/pkg/core/services"
	"github.com/jakechorley/exam-timetabler/pkg/core/timetabler"
	"github.com/jakechorley/exam-timetabler/pkg/db"
)

// ListDataCmd creates the listData command
func ListDataCmd(app *AppContext) *cobra.Command {
	var exportPath string

	cmd := &cobra.Command{
		Use:   "listData",
		Short: "List the departments, courses, rooms and constraints that will be scheduled",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dataset, err := services.ListData(app.Ctx, app.Store, app.Logger)
			if err != nil {
				return err
			}

			printDataset(os.Stdout, dataset)

			if exportPath != "" {
				if err := db.WriteDataset(exportPath, dataset); err != nil {
					return err
				}
				fmt.Printf("Dataset written to %s\n\n", exportPath)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&exportPath, "export", "", "Write the dataset to this YAML or JSON file")

	return cmd
}

func printDataset(w io.Writer, dataset *db.Dataset) {
	fmt.Fprintf(w, "\nDepartments (%d):\n", len(dataset.Departments))
	for _, d := range dataset.Departments {
		fmt.Fprintf(w, "  - %s (%s)\n", d.Name, d.ID)
	}

	fmt.Fprintf(w, "\nCourses (%d):\n", len(dataset.Courses))
	for _, c := range dataset.Courses {
		fmt.Fprintf(w, "  - %-8s %-24s %-10s %4d students, %d units\n", c.ID, c.Name, c.DepartmentID, c.Students, c.Units)
	}

	fmt.Fprintf(w, "\nRooms (%d):\n", len(dataset.Rooms))
	for _, r := range dataset.Rooms {
		fmt.Fprintf(w, "  - %-8s %4d seats\n", r.ID, r.Capacity)
	}

	fmt.Fprintf(w, "\nConstraints (%d):\n", len(dataset.Constraints))
	for _, c := range dataset.Constraints {
		status := "✓"
		if !c.Enabled {
			status = "✗"
		}

		rule := "unknown rule, ignored"
		if resolved, ok := timetabler.ResolveRule(c); ok {
			rule = string(resolved)
		}

		fmt.Fprintf(w, "  %s %-4s [%s] %s (%s)\n", status, c.ID, c.Kind, c.Description, rule)
	}
	fmt.Fprintln(w)
}
