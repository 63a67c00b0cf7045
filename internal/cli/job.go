package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Job is a saved run definition. Relative paths resolve against the job
// file's directory.
//
//	base: choice
//	as_of: "20250401"
//	files:
//	  - exports/チョイス_20250401.csv
//	  - exports/チョイス在庫_20250401.csv
//	vendor_codes: [12ABCD]
//	reference:
//	  periodic_file: ref/定期便DB.xlsx
//	  vendor_file: ref/事業者DB.xlsx
//	output:
//	  path: out/report.xlsx
//	  format: xlsx
type Job struct {
	Base        string       `yaml:"base"`
	AsOf        string       `yaml:"as_of"`
	Files       []string     `yaml:"files"`
	ItemCodes   []string     `yaml:"item_codes"`
	VendorCodes []string     `yaml:"vendor_codes"`
	Reference   JobReference `yaml:"reference"`
	Output      JobOutput    `yaml:"output"`
}

type JobReference struct {
	PeriodicFile    string `yaml:"periodic_file"`
	VendorFile      string `yaml:"vendor_file"`
	SheetsID        string `yaml:"sheets_id"`
	CredentialsFile string `yaml:"credentials_file"`
}

type JobOutput struct {
	Path    string `yaml:"path"`
	Format  string `yaml:"format"`
	Charset string `yaml:"charset"`
}

// LoadJob reads a job file. Unknown keys are rejected so typos surface.
func LoadJob(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var job Job
	if err := dec.Decode(&job); err != nil {
		return nil, fmt.Errorf("parse job %s: %w", path, err)
	}
	job.resolve(filepath.Dir(path))
	return &job, nil
}

func (j *Job) resolve(dir string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	for i, f := range j.Files {
		j.Files[i] = abs(f)
	}
	j.Reference.PeriodicFile = abs(j.Reference.PeriodicFile)
	j.Reference.VendorFile = abs(j.Reference.VendorFile)
	j.Reference.CredentialsFile = abs(j.Reference.CredentialsFile)
	j.Output.Path = abs(j.Output.Path)
}
