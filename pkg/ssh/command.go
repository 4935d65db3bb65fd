// Package ssh builds and runs ssh, scp and aws ssm commands against
// remote hosts.
package ssh

import (
	"errors"
	"fmt"
	"strings"
)

// StrictHostKeyCheckingOff is passed to ssh via -o for freshly provisioned hosts.
const StrictHostKeyCheckingOff = "StrictHostKeyChecking no"

// ErrInvalidCommand is returned when a host is missing connection details.
var ErrInvalidCommand = errors.New("ssh: invalid host")

// Command describes how to reach one remote instance.
type Command struct {
	Name string `yaml:"name" json:"name"`

	SSHKeyPath string `yaml:"ssh_key_path" json:"ssh_key_path"`
	UserName   string `yaml:"user_name" json:"user_name"`

	Region           string `yaml:"region" json:"region"`
	AvailabilityZone string `yaml:"availability_zone" json:"availability_zone"`

	InstanceID    string `yaml:"instance_id" json:"instance_id"`
	InstanceState string `yaml:"instance_state" json:"instance_state"`

	IPMode   string `yaml:"ip_mode" json:"ip_mode"`
	PublicIP string `yaml:"public_ip" json:"public_ip"`

	Profile string `yaml:"profile,omitempty" json:"profile,omitempty"`
}

// Validate checks the fields required to open a connection.
func (c Command) Validate() error {
	var missing []string
	if c.SSHKeyPath == "" {
		missing = append(missing, "ssh_key_path")
	}
	if c.UserName == "" {
		missing = append(missing, "user_name")
	}
	if c.PublicIP == "" {
		missing = append(missing, "public_ip")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidCommand, strings.Join(missing, ", "))
	}
	return nil
}

// Target returns user@ip.
func (c Command) Target() string {
	return c.UserName + "@" + c.PublicIP
}

func (c Command) profileFlag() string {
	if c.Profile == "" {
		return ""
	}
	return "--profile " + c.Profile + " "
}

// String renders a ready-to-paste block of helper commands for the host.
func (c Command) String() string {
	var b strings.Builder
	key, target := c.SSHKeyPath, c.Target()

	fmt.Fprintf(&b, "# change SSH key permission\nchmod 400 %s\n\n", key)

	fmt.Fprintf(&b, "# instance '%s' (%s, %s) -- ip mode '%s'\n",
		c.InstanceID, c.InstanceState, c.AvailabilityZone, c.IPMode)
	fmt.Fprintf(&b, "ssh -o \"%s\" -i %s %s\n", StrictHostKeyCheckingOff, key, target)
	fmt.Fprintf(&b, "ssh -o \"%s\" -i %s %s 'tail -10 /var/log/cloud-init-output.log'\n", StrictHostKeyCheckingOff, key, target)
	fmt.Fprintf(&b, "ssh -o \"%s\" -i %s %s 'tail -f /var/log/cloud-init-output.log'\n\n", StrictHostKeyCheckingOff, key, target)

	b.WriteString("# download a remote file to local machine\n")
	fmt.Fprintf(&b, "scp -i %s %s:REMOTE_FILE_PATH LOCAL_FILE_PATH\n", key, target)
	fmt.Fprintf(&b, "scp -i %s -r %s:REMOTE_DIRECTORY_PATH LOCAL_DIRECTORY_PATH\n\n", key, target)

	b.WriteString("# upload a local file to remote machine\n")
	fmt.Fprintf(&b, "scp -i %s LOCAL_FILE_PATH %s:REMOTE_FILE_PATH\n", key, target)
	fmt.Fprintf(&b, "scp -i %s -r LOCAL_DIRECTORY_PATH %s:REMOTE_DIRECTORY_PATH\n\n", key, target)

	b.WriteString("# AWS SSM session (requires a running SSM agent)\n")
	b.WriteString("# https://github.com/aws/amazon-ssm-agent/issues/131\n")
	ssm := c.SSMStartSessionCommand()
	b.WriteString(ssm + "\n")
	b.WriteString(ssm + " --document-name 'AWS-StartNonInteractiveCommand' --parameters command=\"sudo tail -10 /var/log/cloud-init-output.log\"\n")
	b.WriteString(ssm + " --document-name 'AWS-StartInteractiveCommand' --parameters command=\"bash -l\"\n")

	return b.String()
}

// SSMStartSessionCommand returns the aws cli invocation that opens an SSM session.
func (c Command) SSMStartSessionCommand() string {
	return fmt.Sprintf("aws ssm start-session %s--region %s --target %s",
		c.profileFlag(), c.Region, c.InstanceID)
}
