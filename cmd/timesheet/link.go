package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// linkCmd manages the cached remote roster link
var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Show or clear the last remote roster link",
}

var linkShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the last successfully fetched link",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		link, err := st.LastLink()
		if err != nil {
			return err
		}
		if link == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "(no link saved)")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), link)
		return nil
	},
}

var linkClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget the saved link",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.ClearLink(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "link cleared")
		return nil
	},
}

func init() {
	linkCmd.AddCommand(linkShowCmd, linkClearCmd)
}
