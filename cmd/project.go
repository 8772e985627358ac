package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage a customer's projects",
}

var projectAddCmd = &cobra.Command{
	Use:   "add <customer> <project>",
	Short: "Add a project to a customer",
	Args:  cobra.ExactArgs(2),
	RunE:  runProjectAdd,
}

var projectRemoveCmd = &cobra.Command{
	Use:   "remove <customer> <project>",
	Short: "Remove a project from a customer",
	Args:  cobra.ExactArgs(2),
	RunE:  runProjectRemove,
}

func init() {
	projectCmd.AddCommand(projectAddCmd, projectRemoveCmd)
}

func runProjectAdd(cmd *cobra.Command, args []string) error {
	e := openEnv()
	defer e.close()

	check(e.sess.AddProject(args[0], args[1]))
	fmt.Printf("Added project %q to %q\n", args[1], args[0])
	return nil
}

func runProjectRemove(cmd *cobra.Command, args []string) error {
	e := openEnv()
	defer e.close()

	check(e.sess.RemoveProject(args[0], args[1]))
	fmt.Printf("Removed project %q from %q\n", args[1], args[0])
	return nil
}
