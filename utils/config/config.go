package config

// RuntimeConfig 运行时配置
// 功能：存储配置文件解析后的运行时配置，补齐默认值
// 说明：将YAML配置转换为运行时可用的配置对象，构造后不再修改
type RuntimeConfig struct {
	All Config             // 全部配置
	C   Control            // 规划循环控制配置
	G   GeneralTrajConfig  // 轨迹类别级配置
	D   DetailedTrajConfig // 轨迹合成详细参数
}

// NewRuntimeConfig 根据配置初始化运行时配置
// 功能：创建运行时配置对象，对未给出的轨迹参数回落到默认值
// 参数：config-原始配置对象
// 返回：初始化的运行时配置指针
func NewRuntimeConfig(config Config) *RuntimeConfig {
	rc := &RuntimeConfig{}

	rc.All = config
	rc.C = config.Control
	if rc.C.Step.Interval <= 0 {
		rc.C.Step.Interval = 0.1
	}
	if rc.C.Step.Total <= 0 {
		rc.C.Step.Total = 1
	}
	rc.G = config.Trajectory.General
	if rc.G.TrajectoryType == "" {
		rc.G.TrajectoryType = "inlanecruising"
	}
	rc.D = config.Trajectory.Detailed
	rc.D.applyDefaults()

	return rc
}
