package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/sshscp/pkg/ssh"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

var (
	ErrHostNotFound     = errors.New("host not found")
	ErrDuplicateHost    = errors.New("host already exists")
	ErrInvalidInventory = errors.New("invalid inventory")
)

// Inventory is the on-disk list of known hosts.
type Inventory struct {
	Hosts ssh.Commands `yaml:"hosts"`
}

const inventorySchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "hosts": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["name", "ssh_key_path", "user_name", "public_ip"],
        "additionalProperties": false,
        "properties": {
          "name": { "type": "string", "pattern": "^[A-Za-z0-9._-]+$" },
          "ssh_key_path": { "type": "string", "minLength": 1 },
          "user_name": { "type": "string", "minLength": 1 },
          "region": { "type": "string" },
          "availability_zone": { "type": "string" },
          "instance_id": { "type": "string" },
          "instance_state": { "type": "string" },
          "ip_mode": { "type": "string" },
          "public_ip": { "type": "string", "minLength": 1 },
          "profile": { "type": "string" }
        }
      }
    }
  },
  "additionalProperties": false
}`

var inventorySchemaLoader = gojsonschema.NewStringLoader(inventorySchemaJSON)

// hostNamePattern mirrors the name pattern in the inventory schema.
var hostNamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ValidateInventory checks raw YAML against the inventory schema.
func ValidateInventory(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInventory, err)
	}
	if doc == nil {
		return nil
	}

	result, err := gojsonschema.Validate(inventorySchemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInventory, err)
	}
	if !result.Valid() {
		issues := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			issues = append(issues, desc.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalidInventory, strings.Join(issues, "; "))
	}
	return nil
}

func (r *FilesystemRepository) SaveInventory(inv *Inventory) error {
	if err := r.requireInitialized(); err != nil {
		return err
	}
	if err := checkUniqueNames(inv.Hosts); err != nil {
		return err
	}
	path, err := r.ResolvePath(InventoryFile)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(inv)
	if err != nil {
		return fmt.Errorf("failed to marshal inventory: %w", err)
	}
	// Never write a file that LoadInventory would reject.
	if err := ValidateInventory(data); err != nil {
		return err
	}

	// G306: Use 0600 for files
	return os.WriteFile(path, data, 0600)
}

// LoadInventory reads hosts.yaml. A missing file is an empty inventory.
func (r *FilesystemRepository) LoadInventory() (*Inventory, error) {
	retryer := retry.New[*Inventory](r.retryConfig)

	return retryer.Do(context.Background(), func(ctx context.Context) (*Inventory, error) {
		path, err := r.ResolvePath(InventoryFile)
		if err != nil {
			return nil, err
		}

		// #nosec G304 -- Path is resolved and validated via ResolvePath
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return &Inventory{}, nil
			}
			return nil, fmt.Errorf("failed to read inventory file: %w", err)
		}

		if err := ValidateInventory(data); err != nil {
			return nil, err
		}

		var inv Inventory
		if err := yaml.Unmarshal(data, &inv); err != nil {
			return nil, fmt.Errorf("failed to unmarshal inventory: %w", err)
		}
		if err := checkUniqueNames(inv.Hosts); err != nil {
			return nil, err
		}
		return &inv, nil
	})
}

func (r *FilesystemRepository) GetHost(name string) (ssh.Command, error) {
	inv, err := r.LoadInventory()
	if err != nil {
		return ssh.Command{}, err
	}
	c, ok := inv.Hosts.Find(name)
	if !ok {
		return ssh.Command{}, fmt.Errorf("%w: %s", ErrHostNotFound, name)
	}
	return c, nil
}

func (r *FilesystemRepository) AddHost(c ssh.Command) error {
	if c.Name == "" {
		return fmt.Errorf("%w: host name is required", ssh.ErrInvalidCommand)
	}
	if !hostNamePattern.MatchString(c.Name) {
		return fmt.Errorf("%w: host name %q may only contain letters, digits, '.', '_' and '-'", ssh.ErrInvalidCommand, c.Name)
	}
	if err := c.Validate(); err != nil {
		return err
	}
	inv, err := r.LoadInventory()
	if err != nil {
		return err
	}
	if _, ok := inv.Hosts.Find(c.Name); ok {
		return fmt.Errorf("%w: %s", ErrDuplicateHost, c.Name)
	}
	inv.Hosts = append(inv.Hosts, c)
	return r.SaveInventory(inv)
}

func (r *FilesystemRepository) RemoveHost(name string) error {
	inv, err := r.LoadInventory()
	if err != nil {
		return err
	}
	kept := inv.Hosts[:0]
	found := false
	for _, c := range inv.Hosts {
		if c.Name == name {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrHostNotFound, name)
	}
	inv.Hosts = kept
	return r.SaveInventory(inv)
}

// SyncScript regenerates the helper script from the inventory.
func (r *FilesystemRepository) SyncScript(path string) (string, error) {
	if path == "" {
		p, err := r.ScriptPath()
		if err != nil {
			return "", err
		}
		path = p
	}
	inv, err := r.LoadInventory()
	if err != nil {
		return "", err
	}
	if err := inv.Hosts.Sync(path); err != nil {
		return "", err
	}
	return path, nil
}

func checkUniqueNames(hosts ssh.Commands) error {
	seen := make(map[string]struct{}, len(hosts))
	for _, c := range hosts {
		if _, ok := seen[c.Name]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateHost, c.Name)
		}
		seen[c.Name] = struct{}{}
	}
	return nil
}
