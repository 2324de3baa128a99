package systems

import (
	"net/http"

	"github.com/spaghettifunk/configurator/engine/assets"
	"github.com/spaghettifunk/configurator/engine/core"
)

/** @brief The configuration of every engine system. */
type SystemManagerConfig struct {
	Material MaterialSystemConfig
	Binder   SceneBinderConfig
	/** @brief Number of job workers. */
	Workers int
	/** @brief Capacity of the job queue. */
	Queue int
	/** @brief Client used for remote assets; nil uses http.DefaultClient. */
	HTTPClient *http.Client
}

type SystemManager struct {
	AssetManager     *assets.AssetManager
	JobSystem        *JobSystem
	MaterialSystem   *MaterialSystem
	SceneBinder      *SceneBinder
	PickSystem       *PickSystem
	MeshLoaderSystem *MeshLoaderSystem
	Metrics          *core.Metrics
}

func NewSystemManager(config SystemManagerConfig, events *core.EventSystem) (*SystemManager, error) {
	am, err := assets.NewAssetManager(events)
	if err != nil {
		return nil, err
	}
	if err := am.Initialize(config.HTTPClient); err != nil {
		return nil, err
	}

	js, err := NewJobSystem(config.Workers, config.Queue)
	if err != nil {
		am.Shutdown()
		return nil, err
	}

	ms, err := NewMaterialSystem(config.Material)
	if err != nil {
		js.Shutdown()
		am.Shutdown()
		return nil, err
	}

	metrics := core.NewMetrics()
	sb := NewSceneBinder(config.Binder, ms, metrics)
	ps := NewPickSystem(events, sb)

	mls, err := NewMeshLoaderSystem(js, am, events)
	if err != nil {
		js.Shutdown()
		am.Shutdown()
		return nil, err
	}

	return &SystemManager{
		AssetManager:     am,
		JobSystem:        js,
		MaterialSystem:   ms,
		SceneBinder:      sb,
		PickSystem:       ps,
		MeshLoaderSystem: mls,
		Metrics:          metrics,
	}, nil
}

func (sm *SystemManager) Shutdown() error {
	if err := sm.JobSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.MeshLoaderSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.PickSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.SceneBinder.Shutdown(); err != nil {
		return err
	}
	if err := sm.MaterialSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.AssetManager.Shutdown(); err != nil {
		return err
	}
	return nil
}
