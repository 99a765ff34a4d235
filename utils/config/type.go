package config

// 轨迹合成参数的默认值，ComposeDetailedTrajConfig对非正输入回落到这些值
const (
	defaultTrajectoryTimeLength  = 6.0     // 前视时间窗（秒）
	defaultCurveResampleStepSize = 1.0     // 曲线重采样步长（米）
	defaultMinimumSpeed          = 2.2352  // 最小速度（米/秒，5 mph）
	defaultMaxSpeed              = 44.704  // 最大速度（米/秒，100 mph）
	defaultMaxAccel              = 1.5     // 最大纵向加速度（米/秒²）
	defaultLateralAccelLimit     = 2.5     // 横向加速度上限（米/秒²）
	defaultSpeedMAWindow         = 5       // 速度滑动平均窗口
	defaultCurvatureMAWindow     = 9       // 曲率滑动平均窗口
	defaultBackDistance          = 20.0    // 连续性拼接回看距离（米）
	defaultBufferEndingDowntrack = 20.0    // 末段几何延伸缓冲（米）
)

// GeneralTrajConfig 轨迹类别级配置
// 说明：按机动类别区分的粗粒度配置，构造后按值传递、不再修改
type GeneralTrajConfig struct {
	TrajectoryType         string `yaml:"trajectory_type"`          // 轨迹类别（如inlanecruising、cooperative_lanechange）
	DefaultDownsampleRatio int    `yaml:"default_downsample_ratio"` // 直行几何抽稀比（<=1不抽稀）
	TurnDownsampleRatio    int    `yaml:"turn_downsample_ratio"`    // 转弯/变道几何抽稀比（<=1不抽稀）
}

// DetailedTrajConfig 轨迹合成的详细参数
// 说明：构造后按值传递、不再修改
type DetailedTrajConfig struct {
	TrajectoryTimeLength             float64 `yaml:"trajectory_time_length"`               // 前视时间窗（秒）
	CurveResampleStepSize            float64 `yaml:"curve_resample_step_size"`             // 曲线重采样步长（米）
	MinimumSpeed                     float64 `yaml:"minimum_speed"`                        // 最小速度（米/秒）
	MaxSpeed                         float64 `yaml:"max_speed"`                            // 最大速度（米/秒）
	MaxAccel                         float64 `yaml:"max_accel"`                            // 最大纵向加速度（米/秒²）
	LateralAccelLimit                float64 `yaml:"lateral_accel_limit"`                  // 横向加速度上限（米/秒²）
	SpeedMovingAverageWindowSize     int     `yaml:"speed_moving_average_window_size"`     // 速度滑动平均窗口
	CurvatureMovingAverageWindowSize int     `yaml:"curvature_moving_average_window_size"` // 曲率滑动平均窗口
	BackDistance                     float64 `yaml:"back_distance"`                        // 连续性拼接回看距离（米）
	BufferEndingDowntrack            float64 `yaml:"buffer_ending_downtrack"`              // 末段几何延伸缓冲（米）
}

// ComposeGeneralTrajConfig 构造轨迹类别级配置
func ComposeGeneralTrajConfig(trajectoryType string, defaultDownsampleRatio, turnDownsampleRatio int) GeneralTrajConfig {
	return GeneralTrajConfig{
		TrajectoryType:         trajectoryType,
		DefaultDownsampleRatio: defaultDownsampleRatio,
		TurnDownsampleRatio:    turnDownsampleRatio,
	}
}

// ComposeDetailedTrajConfig 构造轨迹合成详细参数
// 功能：按参数构造DetailedTrajConfig，非正数值回落到默认值
// 说明：调用方只需给出与默认值不同的参数，其余传0即可
func ComposeDetailedTrajConfig(
	trajectoryTimeLength float64,
	curveResampleStepSize float64,
	minimumSpeed float64,
	maxAccel float64,
	lateralAccelLimit float64,
	speedMovingAverageWindowSize int,
	curvatureMovingAverageWindowSize int,
	backDistance float64,
	bufferEndingDowntrack float64,
) DetailedTrajConfig {
	c := DetailedTrajConfig{
		TrajectoryTimeLength:             trajectoryTimeLength,
		CurveResampleStepSize:            curveResampleStepSize,
		MinimumSpeed:                     minimumSpeed,
		MaxSpeed:                         defaultMaxSpeed,
		MaxAccel:                         maxAccel,
		LateralAccelLimit:                lateralAccelLimit,
		SpeedMovingAverageWindowSize:     speedMovingAverageWindowSize,
		CurvatureMovingAverageWindowSize: curvatureMovingAverageWindowSize,
		BackDistance:                     backDistance,
		BufferEndingDowntrack:            bufferEndingDowntrack,
	}
	c.applyDefaults()
	return c
}

// applyDefaults 将非正字段替换为默认值
func (c *DetailedTrajConfig) applyDefaults() {
	if c.TrajectoryTimeLength <= 0 {
		c.TrajectoryTimeLength = defaultTrajectoryTimeLength
	}
	if c.CurveResampleStepSize <= 0 {
		c.CurveResampleStepSize = defaultCurveResampleStepSize
	}
	if c.MinimumSpeed <= 0 {
		c.MinimumSpeed = defaultMinimumSpeed
	}
	if c.MaxSpeed <= 0 {
		c.MaxSpeed = defaultMaxSpeed
	}
	if c.MaxAccel <= 0 {
		c.MaxAccel = defaultMaxAccel
	}
	if c.LateralAccelLimit <= 0 {
		c.LateralAccelLimit = defaultLateralAccelLimit
	}
	if c.SpeedMovingAverageWindowSize <= 0 {
		c.SpeedMovingAverageWindowSize = defaultSpeedMAWindow
	}
	if c.CurvatureMovingAverageWindowSize <= 0 {
		c.CurvatureMovingAverageWindowSize = defaultCurvatureMAWindow
	}
	if c.BackDistance <= 0 {
		c.BackDistance = defaultBackDistance
	}
	if c.BufferEndingDowntrack <= 0 {
		c.BufferEndingDowntrack = defaultBufferEndingDowntrack
	}
}

// ControlStep 指定规划循环时间范围和周期的配置项
type ControlStep struct {
	Start    int32   `yaml:"start"`    // 开始步数
	Total    int32   `yaml:"total"`    // 总步数
	Interval float64 `yaml:"interval"` // 每步的时间间隔（规划周期，秒）
}

// Control 规划循环控制配置
type Control struct {
	Step ControlStep `yaml:"step"`
}

// Trajectory 轨迹引擎配置
type Trajectory struct {
	General  GeneralTrajConfig  `yaml:"general"`  // 类别级配置
	Detailed DetailedTrajConfig `yaml:"detailed"` // 合成详细参数
}

// Config YAML配置文件的根结构
type Config struct {
	Control    Control    `yaml:"control"`    // 规划循环控制
	Trajectory Trajectory `yaml:"trajectory"` // 轨迹引擎配置
}
