package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	customerCompany string
	customerEmail   string
)

var customerCmd = &cobra.Command{
	Use:   "customer",
	Short: "Manage customers",
}

var customerAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a customer",
	Args:  cobra.ExactArgs(1),
	RunE:  runCustomerAdd,
}

var customerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List customers and their projects",
	Args:  cobra.NoArgs,
	RunE:  runCustomerList,
}

var customerEmailCmd = &cobra.Command{
	Use:   "email <name> <email>",
	Short: "Set a customer's email address",
	Args:  cobra.ExactArgs(2),
	RunE:  runCustomerEmail,
}

var customerRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a customer (saved entries keep its name)",
	Args:  cobra.ExactArgs(1),
	RunE:  runCustomerRemove,
}

func init() {
	customerAddCmd.Flags().StringVar(&customerCompany, "company", "", "Company name")
	customerAddCmd.Flags().StringVar(&customerEmail, "email", "", "Email address")
	customerCmd.AddCommand(customerAddCmd, customerListCmd, customerEmailCmd, customerRemoveCmd)
}

func runCustomerAdd(cmd *cobra.Command, args []string) error {
	e := openEnv()
	defer e.close()

	c, err := e.sess.AddCustomer(args[0], customerCompany, customerEmail)
	check(err)
	fmt.Printf("Added customer %q\n", c.Name)
	return nil
}

func runCustomerList(cmd *cobra.Command, args []string) error {
	e := openEnv()
	defer e.close()

	customers := e.sess.Customers()
	if len(customers) == 0 {
		fmt.Println("No customers.")
		return nil
	}
	rows := [][]string{{"Customer", "Company", "Email", "Projects"}}
	for _, c := range customers {
		rows = append(rows, []string{c.Name, c.CompanyName, c.Email, strings.Join(c.Projects, ", ")})
	}
	fmt.Print(table(rows))
	return nil
}

func runCustomerEmail(cmd *cobra.Command, args []string) error {
	e := openEnv()
	defer e.close()

	if _, ok := e.sess.FindCustomer(args[0]); !ok {
		fmt.Fprintf(os.Stderr, "Unknown customer %q, nothing changed.\n", args[0])
		return nil
	}
	check(e.sess.SetCustomerEmail(args[0], args[1]))
	fmt.Printf("Updated email for %q\n", args[0])
	return nil
}

func runCustomerRemove(cmd *cobra.Command, args []string) error {
	e := openEnv()
	defer e.close()

	removed, err := e.sess.RemoveCustomer(args[0])
	check(err)
	if !removed {
		fmt.Printf("No customer %q.\n", args[0])
		return nil
	}
	fmt.Printf("Removed customer %q\n", args[0])
	return nil
}
