package artwork

import (
	"bytes"
	"image"
)

// ArtifactStatus is an Artifact checked against a size policy.
type ArtifactStatus struct {
	Artifact
	Width    int
	Readable bool
	Conforms bool
}

// Inspect reads every stored artifact's dimensions and checks it against p.
func Inspect(d *DiskStore, p SizePolicy) ([]ArtifactStatus, error) {
	artifacts, err := d.List()
	if err != nil {
		return nil, err
	}
	statuses := make([]ArtifactStatus, 0, len(artifacts))
	for _, a := range artifacts {
		st := ArtifactStatus{Artifact: a}
		if data, err := d.Read(a.Name); err == nil {
			if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
				st.Width = cfg.Width
				st.Readable = true
				st.Conforms = conformsConfig(p, cfg)
			}
		}
		statuses = append(statuses, st)
	}
	return statuses, nil
}

// PurgeStale removes artifacts that are unreadable or do not conform to p,
// returning how many were removed. The cache would discard them on their
// next lookup anyway.
func PurgeStale(d *DiskStore, p SizePolicy) (int, error) {
	statuses, err := Inspect(d, p)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, st := range statuses {
		if st.Readable && st.Conforms {
			continue
		}
		if err := d.Remove(st.Name); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
