package main

import (
	"errors"
	"flag"
	"fmt"
	"text/tabwriter"

	"estatedesk/admin"
	"estatedesk/model"
)

var errAdminOnly = errors.New("only admins can manage listings")

func runList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	baseURL := addEnvFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := loadEnv(*baseURL)
	if err != nil {
		return err
	}
	v, err := e.dashboard()
	if err != nil {
		return err
	}
	defer v.Unmount()

	ctx, stop := interruptible()
	defer stop()
	if err := v.Mount(ctx); err != nil {
		return err
	}

	printTable(v)
	return nil
}

// listingFlags are the form fields shared by add and edit.
type listingFlags struct {
	title, description, address, price, propertyType, status, image *string
}

func addListingFlags(fs *flag.FlagSet) listingFlags {
	return listingFlags{
		title:        fs.String("title", "", "Title"),
		description:  fs.String("description", "", "Description"),
		address:      fs.String("address", "", "Location address"),
		price:        fs.String("price", "", "Price, greater than zero"),
		propertyType: fs.String("type", string(model.PropertyApartment), "Apartment, House or Commercial"),
		status:       fs.String("status", string(model.StatusForSale), "For Sale or For Rent"),
		image:        fs.String("image", "", "Path of an image to upload"),
	}
}

// apply copies the flags that were given on the command line into the draft.
// add passes every flag so defaults apply too.
func (lf listingFlags) apply(fs *flag.FlagSet, v *admin.ListingsView, all bool) error {
	fields := map[string]admin.Field{
		"title":       admin.FieldTitle,
		"description": admin.FieldDescription,
		"address":     admin.FieldLocationAddress,
		"price":       admin.FieldPrice,
		"type":        admin.FieldPropertyType,
		"status":      admin.FieldStatus,
	}
	values := map[string]*string{
		"title":       lf.title,
		"description": lf.description,
		"address":     lf.address,
		"price":       lf.price,
		"type":        lf.propertyType,
		"status":      lf.status,
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	for name, field := range fields {
		if !all && !set[name] {
			continue
		}
		if err := v.HandleChange(field, *values[name]); err != nil {
			return err
		}
	}

	if *lf.image == "" {
		return nil
	}
	img, err := admin.ReadImageFile(*lf.image)
	if err != nil {
		return err
	}
	if err := v.SelectImage(img); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s (preview: %s)\n", v.ImageCaption(), v.PreviewSource())
	return nil
}

func runAdd(args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	baseURL := addEnvFlags(fs)
	lf := addListingFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := loadEnv(*baseURL)
	if err != nil {
		return err
	}
	v, err := e.dashboard()
	if err != nil {
		return err
	}
	defer v.Unmount()
	if !v.CanManage() {
		return errAdminOnly
	}

	if err := v.OpenAddModal(); err != nil {
		return err
	}
	if err := lf.apply(fs, v, true); err != nil {
		return err
	}
	return submit(v)
}

func runEdit(args []string) error {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	baseURL := addEnvFlags(fs)
	id := fs.String("id", "", "ID of the listing to edit")
	lf := addListingFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("-id is required")
	}

	e, err := loadEnv(*baseURL)
	if err != nil {
		return err
	}
	v, err := e.dashboard()
	if err != nil {
		return err
	}
	defer v.Unmount()
	if !v.CanManage() {
		return errAdminOnly
	}

	ctx, stop := interruptible()
	defer stop()
	if err := v.Mount(ctx); err != nil {
		return err
	}

	listing, ok := findListing(v.Listings(), *id)
	if !ok {
		return fmt.Errorf("listing %s not found", *id)
	}
	if err := v.OpenEditModal(listing); err != nil {
		return err
	}
	if err := lf.apply(fs, v, false); err != nil {
		return err
	}
	return submit(v)
}

func submit(v *admin.ListingsView) error {
	ctx, stop := interruptible()
	defer stop()

	title := v.Title()
	if err := v.HandleSubmit(ctx); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s: done.\n\n", title)
	printTable(v)
	return nil
}

func runDelete(args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	baseURL := addEnvFlags(fs)
	id := fs.String("id", "", "ID of the listing to delete")
	yes := fs.Bool("yes", false, "Don't ask for confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("-id is required")
	}

	e, err := loadEnv(*baseURL)
	if err != nil {
		return err
	}

	confirmed := false
	confirm := admin.ConfirmFunc(func(prompt string) bool {
		confirmed = *yes || promptConfirm(prompt)
		return confirmed
	})

	v, err := e.dashboard(admin.WithConfirmer(confirm))
	if err != nil {
		return err
	}
	defer v.Unmount()
	if !v.CanManage() {
		return errAdminOnly
	}

	ctx, stop := interruptible()
	defer stop()
	if err := v.HandleDelete(ctx, *id); err != nil {
		return err
	}
	if !confirmed {
		fmt.Fprintln(stdout, "Aborted.")
		return nil
	}

	fmt.Fprintf(stdout, "Deleted %s.\n\n", *id)
	printTable(v)
	return nil
}

func findListing(listings []model.Listing, id string) (model.Listing, bool) {
	for _, l := range listings {
		if l.ID == id {
			return l, true
		}
	}
	return model.Listing{}, false
}

func printTable(v *admin.ListingsView) {
	if msg := v.Err(); msg != "" {
		fmt.Fprintf(stdout, "error: %s\n", msg)
		return
	}

	rows := v.Rows()
	if len(rows) == 0 {
		fmt.Fprintln(stdout, admin.EmptyMessage)
		return
	}

	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tADDRESS\tPRICE\tPROPERTY TYPE\tSTATUS")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", r.ID, r.Title, r.Address, r.Price, r.PropertyType, r.Status)
	}
	tw.Flush()

	if v.CanManage() {
		fmt.Fprintln(stdout, "\nManage with: listingsctl add | edit -id ID | delete -id ID")
	}
}
