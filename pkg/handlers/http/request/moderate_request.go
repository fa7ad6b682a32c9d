package request

import (
	"fmt"
	"strings"
)

const MaxBatchSize = 100

type ModerateRequest struct {
	ImagePath string `json:"image_path"`
}

func (r *ModerateRequest) Validate() error {
	if strings.TrimSpace(r.ImagePath) == "" {
		return fmt.Errorf("image_path is required")
	}
	return nil
}

type ModerateBatchRequest struct {
	ImagePaths []string `json:"image_paths"`
}

func (r *ModerateBatchRequest) Validate() error {
	if len(r.ImagePaths) == 0 {
		return fmt.Errorf("image_paths must contain at least one image")
	}
	if len(r.ImagePaths) > MaxBatchSize {
		return fmt.Errorf("image_paths cannot contain more than %d images", MaxBatchSize)
	}
	for i, p := range r.ImagePaths {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("image_paths[%d] is empty", i)
		}
	}
	return nil
}
