// cmd/tools/registry-updater/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"

	"finportal/internal/common/validation"
	"finportal/pkg/registry"

	partnercrmsync "finportal/internal/workers/crm/partner-crm-sync"
	leademailsend "finportal/internal/workers/leads/lead-email-send"
	leadsmssend "finportal/internal/workers/leads/lead-sms-send"
	leadstatusupdate "finportal/internal/workers/leads/lead-status-update"
)

// inputSchemas maps each task type to the schema its worker validates
// job variables against.
var inputSchemas = map[string]func() validation.JSONSchema{
	leademailsend.TaskType:    leademailsend.GetInputSchema,
	leadsmssend.TaskType:      leadsmssend.GetInputSchema,
	partnercrmsync.TaskType:   partnercrmsync.GetInputSchema,
	leadstatusupdate.TaskType: leadstatusupdate.GetInputSchema,
}

func main() {
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	schemasCmd := flag.NewFlagSet("schemas", flag.ExitOnError)

	var registryPath string
	for _, fs := range []*flag.FlagSet{addCmd, updateCmd, validateCmd, schemasCmd} {
		fs.StringVar(&registryPath, "path", registry.DefaultPath, "Path to registry file")
	}

	idAdd := addCmd.String("id", "", "Activity ID (e.g., lead-email-send)")
	displayName := addCmd.String("displayName", "", "Display Name")
	description := addCmd.String("description", "", "Description")
	category := addCmd.String("category", "", "Category (e.g., notification)")
	taskType := addCmd.String("taskType", "", "Zeebe task type")
	version := addCmd.String("version", "1.0.0", "Version")
	implStatus := addCmd.String("status", registry.StatusPlanned, "Implementation status (planned, in-progress, completed, verified)")

	idUpdate := updateCmd.String("id", "", "Activity ID to update")
	field := updateCmd.String("field", "", "Field to update (status, version, etc.)")
	value := updateCmd.String("value", "", "New value for the field")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "add":
		_ = addCmd.Parse(os.Args[2:])
		if *idAdd == "" || *displayName == "" || *category == "" || *taskType == "" {
			fmt.Println("Error: id, displayName, category, and taskType are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		err = addActivity(registryPath, registry.Activity{
			ID:                   *idAdd,
			DisplayName:          *displayName,
			Description:          *description,
			Category:             *category,
			Version:              *version,
			TaskType:             *taskType,
			ImplementationStatus: *implStatus,
			InputSchema:          map[string]interface{}{},
			OutputVariables:      []string{},
			ErrorCodes:           []string{},
			Timeout:              "10s",
			Workflows:            []string{},
			Tags:                 []string{},
		})

	case "update":
		_ = updateCmd.Parse(os.Args[2:])
		if *idUpdate == "" || *field == "" || *value == "" {
			fmt.Println("Error: id, field, and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		err = updateActivity(registryPath, *idUpdate, *field, *value)

	case "validate":
		_ = validateCmd.Parse(os.Args[2:])
		err = validateRegistry(registryPath)

	case "schemas":
		_ = schemasCmd.Parse(os.Args[2:])
		err = refreshSchemas(registryPath)

	default:
		help()
		return
	}

	if err != nil {
		fmt.Printf("%s failed: %v\n", os.Args[1], err)
		os.Exit(1)
	}
	fmt.Printf("%s done: %s\n", os.Args[1], registryPath)
}

func addActivity(path string, activity registry.Activity) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		reg = &registry.ActivityRegistry{Version: "1.0.0"}
	}

	if _, exists := reg.Find(activity.TaskType); exists {
		return fmt.Errorf("task type %s is already registered", activity.TaskType)
	}
	reg.Upsert(activity)
	return reg.Save(path)
}

func updateActivity(path, id, field, value string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	var target *registry.Activity
	for i := range reg.Activities {
		if reg.Activities[i].ID == id {
			target = &reg.Activities[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("activity with ID %s not found", id)
	}

	switch field {
	case "status":
		target.ImplementationStatus = value
	case "version":
		target.Version = value
	case "displayName":
		target.DisplayName = value
	case "description":
		target.Description = value
	case "category":
		target.Category = value
	case "timeout":
		target.Timeout = value
	case "retries":
		retries, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid retries value: %w", err)
		}
		target.Retries = retries
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	if err := reg.Validate(); err != nil {
		return err
	}
	return reg.Save(path)
}

func validateRegistry(path string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return err
	}

	for _, a := range reg.Activities {
		if _, ok := inputSchemas[a.TaskType]; a.Live() && !ok {
			return fmt.Errorf("activity %s is %s but no worker implements %s", a.ID, a.ImplementationStatus, a.TaskType)
		}
	}
	fmt.Printf("Found %d activities.\n", len(reg.Activities))
	return nil
}

// refreshSchemas rewrites each registered activity's inputSchema from the
// worker that serves it.
func refreshSchemas(path string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	for taskType, schemaFn := range inputSchemas {
		activity, ok := reg.Find(taskType)
		if !ok {
			fmt.Printf("skipping %s: not registered\n", taskType)
			continue
		}
		raw, err := json.Marshal(schemaFn())
		if err != nil {
			return fmt.Errorf("marshal %s schema: %w", taskType, err)
		}
		schema := map[string]interface{}{}
		if err := json.Unmarshal(raw, &schema); err != nil {
			return fmt.Errorf("decode %s schema: %w", taskType, err)
		}
		activity.InputSchema = schema
	}
	return reg.Save(path)
}

func help() {
	fmt.Println(`
Usage: registry-updater <command> [flags]

Commands:
  add      Add a new activity to the registry
  update   Update an existing activity's field
  validate Validate the registry file against the built workers
  schemas  Refresh input schemas from the worker packages
  help     Show this help message

Examples:
  registry-updater add -id lead-whatsapp-send -displayName "Lead WhatsApp" -category notification -taskType lead-whatsapp-send
  registry-updater update -id lead-sms-send -field status -value verified
  registry-updater schemas -path configs/activity-registry.json`)
}
