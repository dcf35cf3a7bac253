package cli

import (
	"fmt"

	"school-service/internal/seed"

	"github.com/spf13/cobra"
)

// SeedOptions holds flags for the seed command.
type SeedOptions struct {
	*RootOptions
	Schools  int
	Students int
	Seed     int64
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the database with fake schools and students",
		Long: `Create fake schools and register fake students to them.

Students are registered through the same rules as the API, so a school that
fills up rejects the rest.

Example:
  school-service seed --schools 5 --students 200`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Schools < 0 || opts.Students < 0 {
				return fmt.Errorf("--schools and --students must not be negative")
			}
			a, err := loadApp(opts.RootOptions)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.migrate(cmd.Context()); err != nil {
				return err
			}
			res, err := seed.Run(cmd.Context(), a.store, seed.Options{
				Schools:  opts.Schools,
				Students: opts.Students,
				Seed:     opts.Seed,
			}, a.log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d schools and %d students (%d rejected)\n",
				res.Schools, res.Students, res.Rejected)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.Schools, "schools", 3, "number of schools to create")
	cmd.Flags().IntVar(&opts.Students, "students", 50, "number of students to register")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "random seed (0 picks one)")

	return cmd
}
