// ABOUTME: CLI commands for Charm KV sync operations
// ABOUTME: SSH key auth means there is no login or logout step

package charm

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/harperreed/prospecta/store"
)

// SyncLinkCommand links this device to a Charm account by running a first
// sync. Charm authenticates with the device's SSH keys.
func SyncLinkCommand(c *Client, args []string) error {
	fs := flag.NewFlagSet("sync link", flag.ExitOnError)
	_ = fs.Parse(args)

	if !c.Remote() {
		return fmt.Errorf("the local badger backend does not sync; set backend to charm first")
	}

	fmt.Printf("Linking to Charm Cloud (%s)...\n\n", c.Config().Host)
	fmt.Println("Charm uses SSH key authentication.")

	if err := c.Sync(); err != nil {
		return fmt.Errorf("link failed: %w", err)
	}

	id, err := c.ID()
	if err != nil {
		fmt.Println("✓ Device linked (ID unavailable)")
	} else {
		fmt.Printf("✓ Linked to account: %s\n", id)
	}
	fmt.Printf("✓ Auto-sync: %v\n", c.Config().AutoSync)
	return nil
}

// SyncStatusCommand shows current sync configuration and status.
func SyncStatusCommand(c *Client, args []string) error {
	fs := flag.NewFlagSet("sync status", flag.ExitOnError)
	_ = fs.Parse(args)

	return showSyncStatus(os.Stdout, c)
}

func showSyncStatus(w io.Writer, c *Client) error {
	cfg := c.Config()
	_, _ = fmt.Fprintln(w, "Charm Sync Status")
	_, _ = fmt.Fprintln(w, "─────────────────")
	if c.Remote() {
		_, _ = fmt.Fprintf(w, "Server:    %s\n", cfg.Host)
		_, _ = fmt.Fprintf(w, "Auto-sync: %v\n", cfg.AutoSync)
	} else {
		_, _ = fmt.Fprintln(w, "Server:    none (local badger store)")
	}

	if id, err := c.ID(); err == nil {
		_, _ = fmt.Fprintln(w, "\nStatus: Connected to Charm Cloud")
		_, _ = fmt.Fprintf(w, "ID:        %s\n", id)
	} else {
		_, _ = fmt.Fprintln(w, "\nStatus: Not connected")
	}

	_, _ = fmt.Fprintln(w)
	for _, kind := range store.Kinds() {
		keys, err := c.KeysWithPrefix(string(kind) + "/")
		if err != nil {
			return fmt.Errorf("failed to count keys: %w", err)
		}
		_, _ = fmt.Fprintf(w, "%-11s%d\n", string(kind)+":", len(keys))
	}
	return nil
}

// SyncNowCommand performs an immediate sync.
func SyncNowCommand(c *Client, args []string) error {
	fs := flag.NewFlagSet("sync now", flag.ExitOnError)
	_ = fs.Parse(args)

	if err := c.Sync(); err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	fmt.Println("✓ Synced")
	return nil
}

// SyncUnlinkCommand explains how to disconnect this device. Charm has no
// unlink API; the SSH key has to be removed from the account.
func SyncUnlinkCommand(args []string) error {
	fs := flag.NewFlagSet("sync unlink", flag.ExitOnError)
	_ = fs.Parse(args)

	fmt.Println("To unlink your device from Charm Cloud:")
	fmt.Println()
	fmt.Println("  1. Remove this device's SSH key from your Charm account")
	fmt.Println("  2. Delete local charm data: rm -rf ~/.local/share/charm")
	return nil
}

// SyncWipeCommand deletes every key of the store.
func SyncWipeCommand(c *Client, args []string) error {
	fs := flag.NewFlagSet("sync wipe", flag.ExitOnError)
	confirm := fs.Bool("confirm", false, "Confirm data wipe")
	_ = fs.Parse(args)

	if !*confirm {
		fmt.Println("WARNING: This will delete ALL prospecta data in this store!")
		fmt.Println()
		fmt.Println("To confirm, run:")
		fmt.Println("  prospecta sync wipe --confirm")
		return nil
	}

	n, err := Wipe(c)
	if err != nil {
		return fmt.Errorf("failed to wipe store: %w", err)
	}
	fmt.Printf("✓ %d keys deleted\n", n)
	return nil
}

// Wipe deletes all keys and returns how many were removed.
func Wipe(c *Client) (int, error) {
	keys, err := c.KeysWithPrefix("")
	if err != nil {
		return 0, err
	}
	for _, k := range keys {
		if err := c.Delete(k); err != nil {
			return 0, err
		}
	}
	return len(keys), nil
}
