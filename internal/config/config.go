package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"gerencial/internal"
)

type Config struct {
	BasePath          string
	OutputFile        string
	SourceDelimiter   rune
	SourceEncoding    string
	CompaniesFile     string
	Companies         []Company
	ParallelCompanies bool

	DBPath     string
	RawMailDir string

	LogLevel  string
	LogFormat string

	GmailClientID       string
	GmailClientSecret   string
	GmailRedirectURI    string
	GmailRefreshToken   string
	GmailRequestsPerSec int

	IMAPHost     string
	IMAPPort     int
	IMAPSecure   bool
	IMAPUser     string
	IMAPPassword string
	IMAPMarkSeen bool

	MailLookbackDays int

	ListenerProvider    string
	ListenerLabel       string
	ListenerIntervalSec int
	ListenerFetchMax    int
}

// Company maps one company onto the file name of each of its five extracts.
type Company struct {
	Name  string                      `yaml:"name"`
	Files map[internal.Dataset]string `yaml:"files"`
}

// File returns the extract path of dataset under basePath.
func (c Company) File(basePath string, dataset internal.Dataset) string {
	return filepath.Join(basePath, c.Files[dataset])
}

type companiesFile struct {
	Companies []Company `yaml:"companies"`
}

// DefaultCompanies is the built-in company list used when no companies file is set.
func DefaultCompanies() []Company {
	return []Company{
		defaultCompany(internal.CompanyA, "sample_empresa_a_file"),
		defaultCompany(internal.CompanyB, "sample_empresa_b_file"),
	}
}

func defaultCompany(name, prefix string) Company {
	files := make(map[internal.Dataset]string, len(internal.Datasets))
	for i, ds := range internal.Datasets {
		files[ds] = fmt.Sprintf("%s%d.csv", prefix, i+1)
	}
	return Company{Name: name, Files: files}
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		BasePath:          getEnv("BASE_PATH", "data/"),
		OutputFile:        getEnv("OUTPUT_FILE", "output.xlsx"),
		SourceDelimiter:   getEnvRune("SOURCE_DELIMITER", ';'),
		SourceEncoding:    getEnv("SOURCE_ENCODING", "latin1"),
		CompaniesFile:     getEnv("COMPANIES_FILE", ""),
		ParallelCompanies: getEnvBool("PARALLEL_COMPANIES", true),

		DBPath:     getEnv("DB_PATH", filepath.Join(cwd, "data", "gerencial.db")),
		RawMailDir: getEnv("MAIL_RAW_DIR", filepath.Join(cwd, "data", "raw")),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		GmailClientID:       getEnv("GMAIL_CLIENT_ID", ""),
		GmailClientSecret:   getEnv("GMAIL_CLIENT_SECRET", ""),
		GmailRedirectURI:    getEnv("GMAIL_REDIRECT_URI", "https://developers.google.com/oauthplayground"),
		GmailRefreshToken:   getEnv("GMAIL_REFRESH_TOKEN", ""),
		GmailRequestsPerSec: getEnvInt("GMAIL_REQUESTS_PER_SEC", 10),

		IMAPHost:     getEnv("IMAP_HOST", ""),
		IMAPPort:     getEnvInt("IMAP_PORT", 993),
		IMAPSecure:   getEnvBool("IMAP_SECURE", true),
		IMAPUser:     getEnv("IMAP_USER", ""),
		IMAPPassword: getEnv("IMAP_PASSWORD", ""),
		IMAPMarkSeen: getEnvBool("IMAP_MARK_SEEN", false),

		MailLookbackDays: getEnvInt("MAIL_LOOKBACK_DAYS", 7),

		ListenerProvider:    getEnv("LISTENER_PROVIDER", "gmail"),
		ListenerLabel:       getEnv("LISTENER_LABEL", "INBOX"),
		ListenerIntervalSec: getEnvInt("LISTENER_INTERVAL_SEC", 300),
		ListenerFetchMax:    getEnvInt("LISTENER_FETCH_MAX", 20),
	}

	cfg.Companies = DefaultCompanies()
	if strings.TrimSpace(cfg.CompaniesFile) != "" {
		companies, err := LoadCompanies(cfg.CompaniesFile)
		if err != nil {
			return Config{}, err
		}
		cfg.Companies = companies
	}
	return cfg, nil
}

// LoadCompanies reads the ordered company list from a YAML file. Every company must
// name a file for each dataset.
func LoadCompanies(path string) ([]Company, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read companies file: %w", err)
	}
	var doc companiesFile
	if err := yaml.Unmarshal(blob, &doc); err != nil {
		return nil, fmt.Errorf("parse companies file %s: %w", path, err)
	}
	if len(doc.Companies) == 0 {
		return nil, fmt.Errorf("companies file %s lists no companies", path)
	}
	seen := map[string]bool{}
	for _, c := range doc.Companies {
		if strings.TrimSpace(c.Name) == "" {
			return nil, fmt.Errorf("companies file %s: company without name", path)
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("companies file %s: duplicate company %s", path, c.Name)
		}
		seen[c.Name] = true
		for _, ds := range internal.Datasets {
			if strings.TrimSpace(c.Files[ds]) == "" {
				return nil, fmt.Errorf("companies file %s: %s has no %s file", path, c.Name, ds)
			}
		}
	}
	return doc.Companies, nil
}

// OutputPath resolves OutputFile under BasePath unless it is absolute.
func (c Config) OutputPath() string {
	if filepath.IsAbs(c.OutputFile) {
		return c.OutputFile
	}
	return filepath.Join(c.BasePath, c.OutputFile)
}

// ExtractFileNames maps the lower-cased base name of every configured extract onto
// its path relative to BasePath, used to recognize mail attachments.
func (c Config) ExtractFileNames() map[string]string {
	out := map[string]string{}
	for _, company := range c.Companies {
		for _, name := range company.Files {
			out[strings.ToLower(filepath.Base(name))] = name
		}
	}
	return out
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvRune(key string, fallback rune) rune {
	value := getEnv(key, "")
	if value == `\t` {
		return '\t'
	}
	runes := []rune(value)
	if len(runes) != 1 {
		return fallback
	}
	return runes[0]
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
