package platform

import (
	"bufio"
	"bytes"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/archivepull/archive-pull/internal/policy"
)

// External tool names
const (
	BinaryFFmpeg = "ffmpeg"
	BinaryYtDlp  = "yt-dlp"
)

// Bundle locations checked before falling back to PATH
const (
	ResourcesDirName = "resources"
	BinDirName       = "bin"
)

// Operating system constants
const (
	OSDarwin  = "darwin"
	OSWindows = "windows"
)

// Resource subdirectory names per OS
const (
	ResourceDirWindows = "win"
	ResourceDirMacOS   = "mac"
	ResourceDirLinux   = "linux"
)

const WindowsExeSuffix = ".exe"

// File permissions
const (
	DefaultDirPermissions    = 0755
	DefaultBinaryPermissions = 0755
)

// Binaries holds the resolved locations of the external tools. Discovered
// once at startup and read-only for the process lifetime.
type Binaries struct {
	FFmpeg string
	YtDLP  string
}

// DiscoverBinaries resolves both external tools against the ordered
// candidate list. Discovery never fails: an unresolved tool keeps its
// first candidate path so that a later spawn reports a distinct
// launch failure.
func DiscoverBinaries() Binaries {
	baseDir := executableDir()
	return Binaries{
		FFmpeg: locate(baseDir, BinaryFFmpeg),
		YtDLP:  locate(baseDir, BinaryYtDlp),
	}
}

// locate checks an explicit ordered list of candidate locations: the
// bundled resources directory for this OS, a bin directory beside the
// executable, then the system PATH. The first existing candidate wins.
func locate(baseDir, name string) string {
	fileName := name
	if runtime.GOOS == OSWindows {
		fileName += WindowsExeSuffix
	}

	candidates := []string{
		filepath.Join(baseDir, ResourcesDirName, resourceDir(), fileName),
		filepath.Join(baseDir, BinDirName, fileName),
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			ensureExecutable(candidate)
			return candidate
		}
	}

	if path, err := exec.LookPath(name); err == nil {
		return path
	}

	log.Printf("binary %s not found, defaulting to %s", name, candidates[0])
	return candidates[0]
}

func executableDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

func resourceDir() string {
	switch runtime.GOOS {
	case OSWindows:
		return ResourceDirWindows
	case OSDarwin:
		return ResourceDirMacOS
	default:
		return ResourceDirLinux
	}
}

// ensureExecutable marks a bundled binary executable on systems where the
// packaging may have dropped the bit. Failures are logged, not fatal.
func ensureExecutable(path string) {
	if runtime.GOOS == OSWindows {
		return
	}
	if err := os.Chmod(path, DefaultBinaryPermissions); err != nil {
		log.Printf("failed to mark %s executable: %v", path, err)
	}
}

// ProbeCapability runs the transcoder's encoder listing once and collects
// the available encoder names. A probe failure yields an empty capability
// set, which downstream policy resolves to CPU encoders; it is never fatal.
func ProbeCapability(ffmpegPath string) policy.Capability {
	cap := policy.Capability{OS: runtime.GOOS, Encoders: map[string]bool{}}

	output, err := exec.Command(ffmpegPath, "-encoders").Output()
	if err != nil {
		log.Printf("encoder probe failed: %v", err)
		return cap
	}

	cap.Encoders = parseEncoderList(output)
	return cap
}

// parseEncoderList extracts encoder names from `ffmpeg -encoders` output.
// Table rows look like " V....D h264_nvenc  NVIDIA NVENC H.264 encoder";
// the name is the second whitespace-separated field.
func parseEncoderList(output []byte) map[string]bool {
	encoders := make(map[string]bool)
	scanner := bufio.NewScanner(bytes.NewReader(output))

	inTable := false
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "------") {
			inTable = true
			continue
		}
		if !inTable {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 2 {
			encoders[fields[1]] = true
		}
	}
	return encoders
}

// CreateDirectoryIfNotExists creates directory if it doesn't exist
func CreateDirectoryIfNotExists(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return os.MkdirAll(dirPath, DefaultDirPermissions)
	}
	return nil
}

// GetHomeDownloadsDir returns the standard Downloads directory for the user
func GetHomeDownloadsDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, "Downloads"), nil
}
