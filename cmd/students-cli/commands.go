package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
)

// errFailed marks an expected negative outcome (validation, not found)
// whose message has already been printed.
var errFailed = errors.New("failed")

type cli struct {
	store  storage.Storage
	out    io.Writer
	errOut io.Writer
}

func (c *cli) success(format string, args ...any) {
	color.New(color.FgGreen).Fprintf(c.out, format+"\n", args...)
}

func (c *cli) fail(msg string) error {
	color.New(color.FgRed).Fprintln(c.errOut, msg)
	return errFailed
}

func (c *cli) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	return fs
}

func (c *cli) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(c.errOut, "unexpected argument: %s\n", fs.Arg(0))
		return errUsage
	}
	return nil
}

// idArg splits "<id> [flags]" and parses the id.
func (c *cli) idArg(args []string) (int64, []string, error) {
	if len(args) == 0 {
		fmt.Fprintln(c.errOut, "missing student id")
		return 0, nil, errUsage
	}
	id, err := types.ParseID(args[0])
	if err != nil {
		return 0, nil, c.fail(err.Error())
	}
	return id, args[1:], nil
}

func visited(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

func (c *cli) list(args []string) error {
	fs := c.flagSet("list")
	format := fs.String("o", "table", "output format: table, json or yaml")
	if err := c.parse(fs, args); err != nil {
		return err
	}

	students, err := c.store.GetStudents()
	if err != nil {
		return err
	}

	if err := c.render(students, *format); err != nil {
		return err
	}
	if *format == "table" {
		c.success("Total students: %d", len(students))
	}
	return nil
}

func (c *cli) add(args []string) error {
	fs := c.flagSet("add")
	name := fs.String("name", "", "full name")
	age := fs.String("age", "18", "age in years")
	grade := fs.String("grade", "", "grade (e.g. 10, A-level)")
	email := fs.String("email", "", "email (optional)")
	gpa := fs.String("gpa", "0.0", "GPA between 0.0 and 4.0")
	notes := fs.String("notes", "", "notes (optional)")
	if err := c.parse(fs, args); err != nil {
		return err
	}

	ageVal, err := types.ParseAge(*age)
	if err != nil {
		return c.fail(err.Error())
	}
	gpaVal, err := types.ParseGPA(*gpa)
	if err != nil {
		return c.fail(err.Error())
	}

	if ok, msg := types.Validate(*name, ageVal, *grade, *email, gpaVal); !ok {
		return c.fail(msg)
	}

	student := types.Student{
		Name:  *name,
		Age:   ageVal,
		Grade: *grade,
		Email: email,
		GPA:   gpaVal,
		Notes: notes,
	}.Normalize()

	created, err := c.store.CreateStudent(student)
	if err != nil {
		return err
	}

	c.success("Student added with ID %d", created.ID)
	return nil
}

func (c *cli) get(args []string) error {
	id, rest, err := c.idArg(args)
	if err != nil {
		return err
	}
	fs := c.flagSet("get")
	format := fs.String("o", "table", "output format: table, json or yaml")
	if err := c.parse(fs, rest); err != nil {
		return err
	}

	student, ok, err := c.store.GetStudentByID(id)
	if err != nil {
		return err
	}
	if !ok {
		return c.fail("Student not found.")
	}

	return c.render([]types.Student{student}, *format)
}

func (c *cli) update(args []string) error {
	id, rest, err := c.idArg(args)
	if err != nil {
		return err
	}

	fs := c.flagSet("update")
	name := fs.String("name", "", "full name")
	age := fs.String("age", "", "age in years")
	grade := fs.String("grade", "", "grade")
	email := fs.String("email", "", "email (empty clears it)")
	gpa := fs.String("gpa", "", "GPA between 0.0 and 4.0")
	notes := fs.String("notes", "", "notes (empty clears them)")
	if err := c.parse(fs, rest); err != nil {
		return err
	}

	set := visited(fs)
	var patch types.StudentPatch
	if set["name"] {
		patch.Name = name
	}
	if set["age"] {
		v, err := types.ParseAge(*age)
		if err != nil {
			return c.fail(err.Error())
		}
		patch.Age = &v
	}
	if set["grade"] {
		patch.Grade = grade
	}
	if set["email"] {
		patch.Email = email
	}
	if set["gpa"] {
		v, err := types.ParseGPA(*gpa)
		if err != nil {
			return c.fail(err.Error())
		}
		patch.GPA = &v
	}
	if set["notes"] {
		patch.Notes = notes
	}
	if patch.IsEmpty() {
		fmt.Fprintln(c.errOut, "nothing to update: pass at least one field flag")
		return errUsage
	}
	patch = patch.Normalize()

	current, ok, err := c.store.GetStudentByID(id)
	if err != nil {
		return err
	}
	if !ok {
		return c.fail("Student not found.")
	}
	if ok, msg := types.ValidateStudent(patch.Apply(current)); !ok {
		return c.fail(msg)
	}

	if _, ok, err = c.store.UpdateStudentByID(id, patch); err != nil {
		return err
	}
	if !ok {
		return c.fail("Update failed.")
	}

	c.success("Student updated.")
	return nil
}

func (c *cli) delete(args []string) error {
	id, rest, err := c.idArg(args)
	if err != nil {
		return err
	}
	if err := c.parse(c.flagSet("delete"), rest); err != nil {
		return err
	}

	removed, err := c.store.DeleteStudentByID(id)
	if err != nil {
		return err
	}
	if !removed {
		return c.fail("Student not found.")
	}

	c.success("Student deleted.")
	return nil
}

func (c *cli) search(args []string) error {
	fs := c.flagSet("search")
	keyword := fs.String("keyword", "", "name substring or exact id")
	grade := fs.String("grade", "", "exact grade")
	minAge := fs.String("min-age", "", "minimum age (inclusive)")
	maxAge := fs.String("max-age", "", "maximum age (inclusive)")
	minGPA := fs.String("min-gpa", "", "minimum GPA (inclusive)")
	maxGPA := fs.String("max-gpa", "", "maximum GPA (inclusive)")
	format := fs.String("o", "table", "output format: table, json or yaml")
	if err := c.parse(fs, args); err != nil {
		return err
	}

	set := visited(fs)
	criteria := types.Criteria{Keyword: *keyword, Grade: *grade}

	for _, b := range []struct {
		flag string
		raw  *string
		dst  **int
	}{{"min-age", minAge, &criteria.MinAge}, {"max-age", maxAge, &criteria.MaxAge}} {
		if !set[b.flag] {
			continue
		}
		v, err := types.ParseAge(*b.raw)
		if err != nil {
			return c.fail(fmt.Sprintf("-%s must be an integer.", b.flag))
		}
		*b.dst = &v
	}

	for _, b := range []struct {
		flag string
		raw  *string
		dst  **float64
	}{{"min-gpa", minGPA, &criteria.MinGPA}, {"max-gpa", maxGPA, &criteria.MaxGPA}} {
		if !set[b.flag] {
			continue
		}
		v, err := types.ParseGPA(*b.raw)
		if err != nil {
			return c.fail(fmt.Sprintf("-%s must be a number.", b.flag))
		}
		*b.dst = &v
	}

	students, err := c.store.SearchStudents(criteria)
	if err != nil {
		return err
	}

	if err := c.render(students, *format); err != nil {
		return err
	}
	if *format == "table" {
		c.success("Found %d result(s).", len(students))
	}
	return nil
}

// render writes students in the requested format.
func (c *cli) render(students []types.Student, format string) error {
	if students == nil {
		students = []types.Student{}
	}

	switch format {
	case "table":
		return c.renderTable(students)

	case "json":
		data, err := json.MarshalIndent(students, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(c.out, string(data))
		return err

	case "yaml":
		enc := yaml.NewEncoder(c.out)
		enc.SetIndent(2)
		if err := enc.Encode(students); err != nil {
			return err
		}
		return enc.Close()

	default:
		fmt.Fprintf(c.errOut, "unknown output format %q\n", format)
		return errUsage
	}
}

func (c *cli) renderTable(students []types.Student) error {
	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	color.New(color.FgCyan).Fprintln(tw, "ID\tNAME\tAGE\tGRADE\tEMAIL\tGPA\tNOTES")
	for _, s := range students {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\t%.2f\t%s\n",
			s.ID, s.Name, s.Age, s.Grade, s.EmailOrEmpty(), s.GPA, s.NotesOrEmpty())
	}
	return tw.Flush()
}
