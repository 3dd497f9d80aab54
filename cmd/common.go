/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"

	"github.com/valpere/potrans/internal/config"
	"github.com/valpere/potrans/internal/translator"
)

// buildProvider constructs the translation backend selected in cfg.
func buildProvider(cfg *config.Config) (translator.Provider, error) {
	switch cfg.Provider {
	case config.ProviderMoonshot:
		svc, err := translator.NewMoonshotService(cfg.Moonshot)
		if err != nil {
			return nil, err
		}
		return svc, nil
	case config.ProviderGoogle:
		return translator.NewGoogleService(cfg.Google), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}
