package main

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"text/tabwriter"

	"github.com/RoGogDBD/salesitems/internal/models"
	"github.com/RoGogDBD/salesitems/internal/repository"
	"github.com/RoGogDBD/salesitems/internal/validation"
)

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

func renderList(out io.Writer, state repository.State, email string) error {
	if len(state.Items) == 0 {
		_, err := fmt.Fprintln(out, "No items")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDESCRIPTION\tPRICE\tSELLER\tCREATED\t")
	for _, item := range state.Items {
		mark := ""
		if item.OwnedBy(email) {
			mark = "*"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			item.ID, item.Description, formatPrice(item.Price), item.SellerEmail, item.CreatedDate(), mark)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "%d of %d items, sort: %s\n", len(state.Items), len(state.RawItems), state.Sort)
	return err
}

func renderItem(out io.Writer, item models.Item, email string) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%d\n", item.ID)
	fmt.Fprintf(tw, "Description:\t%s\n", item.Description)
	fmt.Fprintf(tw, "Price:\t%s\n", formatPrice(item.Price))
	fmt.Fprintf(tw, "Seller email:\t%s\n", item.SellerEmail)
	fmt.Fprintf(tw, "Seller phone:\t%s\n", item.SellerPhone)
	fmt.Fprintf(tw, "Created:\t%s\n", item.CreatedDate())
	if validation.ShowPicture(item.PictureURL) {
		fmt.Fprintf(tw, "Picture:\t%s\n", item.PictureURL)
	}
	if item.OwnedBy(email) {
		fmt.Fprintln(tw, "Yours:\tyes")
	}
	return tw.Flush()
}

func renderFieldErrors(out io.Writer, errs map[string]string) {
	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	slices.Sort(fields)
	for _, field := range fields {
		fmt.Fprintf(out, "%s: %s\n", field, errs[field])
	}
}
