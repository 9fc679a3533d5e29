// Package console is the interactive menu front end. It reads one answer
// per line from an io.Reader and writes prompts and results to an
// io.Writer, so it runs the same against a terminal or a test buffer.
//
// bufio.Scanner is used for input: the menu is line-oriented and none of
// the libraries in use provide a prompt reader.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
)

const separator = "----------------------------------------"

const menu = `
---- Student Management System Menu ----
1. Add Student
2. Edit Student
3. Delete Student
4. View Student Details
5. Display All Students
6. Search Students
7. Assign Course to Student
8. Update Student Marks
9. Update Student Attendance
0. Exit
`

// errEOF ends the loop when input runs out mid-prompt; errExit when the
// user picks 0.
var (
	errEOF  = errors.New("console: input closed")
	errExit = errors.New("console: exit")
)

// Console runs the menu loop against a registry.
type Console struct {
	registry storage.Storage
	in       *bufio.Scanner
	out      io.Writer
	log      *slog.Logger
}

// New returns a console. A nil logger falls back to slog.Default().
func New(registry storage.Storage, in io.Reader, out io.Writer, log *slog.Logger) *Console {
	if log == nil {
		log = slog.Default()
	}
	return &Console{
		registry: registry,
		in:       bufio.NewScanner(in),
		out:      out,
		log:      log,
	}
}

// Run shows the menu until the user picks 0 or input ends. Domain
// outcomes are printed and never end the loop.
func (c *Console) Run() error {
	for {
		fmt.Fprint(c.out, menu)
		choice, err := c.ask("Enter your choice: ")
		if errors.Is(err, errEOF) {
			return nil
		}
		if err != nil {
			return err
		}

		err = c.dispatch(strings.TrimSpace(choice))
		if errors.Is(err, errExit) || errors.Is(err, errEOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (c *Console) dispatch(choice string) error {
	switch choice {
	case "1":
		return c.add()
	case "2":
		return c.edit()
	case "3":
		return c.delete()
	case "4":
		return c.view()
	case "5":
		c.displayAll()
		return nil
	case "6":
		return c.search()
	case "7":
		return c.assignCourse()
	case "8":
		return c.updateMarks()
	case "9":
		return c.updateAttendance()
	case "0":
		c.println("Exiting...")
		return errExit
	default:
		c.println("Invalid choice. Please try again.")
		return nil
	}
}

func (c *Console) add() error {
	answers, err := c.askAll("Enter student ID: ", "Enter name: ", "Enter year: ", "Enter department: ")
	if err != nil {
		return err
	}
	student := types.NewStudent(answers[0], answers[1], answers[2], answers[3])

	err = c.registry.Add(student)
	switch {
	case errors.Is(err, storage.ErrDuplicate):
		c.println(fmt.Sprintf("Student with ID %s already exists.", student.ID))
	case err != nil:
		c.log.Error("add failed", slog.String("id", student.ID), slog.String("error", err.Error()))
		c.println(fmt.Sprintf("Error: %v", err))
	default:
		c.println("Student added successfully.")
	}
	return nil
}

func (c *Console) edit() error {
	answers, err := c.askAll(
		"Enter student ID to edit: ",
		"Enter new name (leave blank to skip): ",
		"Enter new year (leave blank to skip): ",
		"Enter new department (leave blank to skip): ",
	)
	if err != nil {
		return err
	}

	details := types.Details{
		Name:       types.NonEmpty(answers[1]),
		Year:       types.NonEmpty(answers[2]),
		Department: types.NonEmpty(answers[3]),
	}
	if _, err := c.registry.Edit(answers[0], details); err != nil {
		c.report(err, "")
		return nil
	}
	c.println("Student details updated successfully.")
	return nil
}

func (c *Console) delete() error {
	id, err := c.ask("Enter student ID to delete: ")
	if err != nil {
		return err
	}
	if err := c.registry.Delete(id); err != nil {
		c.report(err, "")
		return nil
	}
	c.println("Student deleted successfully.")
	return nil
}

func (c *Console) view() error {
	id, err := c.ask("Enter student ID to view details: ")
	if err != nil {
		return err
	}
	student, err := c.registry.Get(id)
	if err != nil {
		c.report(err, "")
		return nil
	}
	fmt.Fprint(c.out, student.String())
	return nil
}

func (c *Console) displayAll() {
	students := c.registry.List()
	if len(students) == 0 {
		c.println("No students found.")
		return
	}
	c.printStudents(students)
}

func (c *Console) search() error {
	c.println("Search by: \n a. Student ID \n b. Name \n c. Department")
	kind, err := c.ask("Choose a search criteria (a/b/c): ")
	if err != nil {
		return err
	}

	var criteria types.Criteria
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "a":
		v, err := c.ask("Enter student ID: ")
		if err != nil {
			return err
		}
		criteria.ID = types.Ptr(v)
	case "b":
		v, err := c.ask("Enter name: ")
		if err != nil {
			return err
		}
		criteria.Name = types.Ptr(v)
	case "c":
		v, err := c.ask("Enter department: ")
		if err != nil {
			return err
		}
		criteria.Department = types.Ptr(v)
	default:
		c.println("Invalid choice.")
		return nil
	}

	results := c.registry.Search(criteria)
	if len(results) == 0 {
		c.println("No matching students found.")
		return nil
	}
	c.printStudents(results)
	return nil
}

func (c *Console) assignCourse() error {
	answers, err := c.askAll("Enter student ID: ", "Enter course name: ")
	if err != nil {
		return err
	}
	if _, err := c.registry.AssignCourse(answers[0], answers[1]); err != nil {
		c.report(err, answers[1])
		return nil
	}
	c.println(fmt.Sprintf("Course '%s' assigned to student %s.", answers[1], answers[0]))
	return nil
}

func (c *Console) updateMarks() error {
	answers, err := c.askAll("Enter student ID: ", "Enter course name: ", "Enter marks: ")
	if err != nil {
		return err
	}
	mark, err := parseNumber(answers[2])
	if err != nil {
		c.println("Invalid mark value.")
		return nil
	}
	if _, err := c.registry.UpdateMarks(answers[0], answers[1], mark); err != nil {
		c.report(err, answers[1])
		return nil
	}
	c.println("Marks updated successfully.")
	return nil
}

func (c *Console) updateAttendance() error {
	answers, err := c.askAll("Enter student ID: ", "Enter course name: ", "Enter attendance percentage: ")
	if err != nil {
		return err
	}
	pct, err := parseNumber(answers[2])
	if err != nil {
		c.println("Invalid attendance value.")
		return nil
	}
	if _, err := c.registry.UpdateAttendance(answers[0], answers[1], pct); err != nil {
		c.report(err, answers[1])
		return nil
	}
	c.println("Attendance updated successfully.")
	return nil
}

// report prints the message for a registry outcome. course names the
// course involved, if any.
func (c *Console) report(err error, course string) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		c.println("Student not found.")
	case errors.Is(err, types.ErrCourseNotAssigned):
		c.println(fmt.Sprintf("Course %s not assigned to the student.", course))
	default:
		c.log.Error("operation failed", slog.String("error", err.Error()))
		c.println(fmt.Sprintf("Error: %v", err))
	}
}

func (c *Console) printStudents(students []types.Student) {
	for _, s := range students {
		c.println(separator)
		c.println(s.String())
	}
}

func (c *Console) ask(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", fmt.Errorf("console: read: %w", err)
		}
		return "", errEOF
	}
	return c.in.Text(), nil
}

func (c *Console) askAll(prompts ...string) ([]string, error) {
	answers := make([]string, 0, len(prompts))
	for _, p := range prompts {
		a, err := c.ask(p)
		if err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, nil
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.out, s)
}

func parseNumber(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("parseNumber: %q is not a finite number", raw)
	}
	return v, nil
}
