package main

import (
	"encoding/base64"
	"flag"
	"os"

	"git.fiblab.net/general/common/v2/geometry"
	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/tsinghua-fib-lab/trajectory-planner-oss/entity"
	"github.com/tsinghua-fib-lab/trajectory-planner-oss/entity/lanelet"
	"github.com/tsinghua-fib-lab/trajectory-planner-oss/task"
	"github.com/tsinghua-fib-lab/trajectory-planner-oss/utils/config"
)

var (
	// 规划任务名，用于日志标识
	job = flag.String("job", "job0", "the name of the planning task")
	// 配置文件路径
	configPath = flag.String("config", "", "config file path")
	// 配置文件Base64编码后的数据
	configData = flag.String("config-data", "", "config file base64 encoded data")
	// 随机数种子，用于车辆状态仿真的扰动
	seed = flag.Uint64("seed", 43, "random seed for vehicle state simulation")

	// log
	logLevels = map[string]logrus.Level{
		"trace":    logrus.TraceLevel,
		"debug":    logrus.DebugLevel,
		"info":     logrus.InfoLevel,
		"warn":     logrus.WarnLevel,
		"error":    logrus.ErrorLevel,
		"critical": logrus.FatalLevel,
		"off":      logrus.PanicLevel,
	}
	logLevel = flag.String("log.level", "info", "日志级别（可选项：trace debug info warn error critical off）")

	log = logrus.WithField("module", "planner")
)

// buildDemoWorld 构造演示用的双车道路网与机动序列
// 功能：两条平行直车道，先车道保持加速、后变道到相邻车道
// 返回：道路网络、车辆初始状态与机动序列
func buildDemoWorld() (*lanelet.Manager, entity.VehicleState, []entity.Maneuver) {
	m := lanelet.NewManager()
	line1 := make([]geometry.Point, 0, 41)
	line2 := make([]geometry.Point, 0, 41)
	for i := 0; i <= 40; i++ {
		x := float64(i) * 5
		line1 = append(line1, geometry.Point{X: x, Y: 0})
		line2 = append(line2, geometry.Point{X: x, Y: 3.7})
	}
	if _, err := m.AddLanelet(106, line1); err != nil {
		log.Panicf("demo world: %v", err)
	}
	if _, err := m.AddLanelet(111, line2); err != nil {
		log.Panicf("demo world: %v", err)
	}
	if err := m.SetRoute(106, 111); err != nil {
		log.Panicf("demo world: %v", err)
	}
	state := entity.VehicleState{
		XYZ: geometry.Point{X: 0, Y: 0},
		V:   8.0,
	}
	maneuvers := []entity.Maneuver{
		{
			Type:              entity.ManeuverLaneChange,
			StartDist:         0,
			EndDist:           m.RouteLength(),
			StartSpeed:        8.0,
			EndSpeed:          11.176,
			StartTime:         0,
			EndTime:           30,
			StartingLaneletID: 106,
			EndingLaneletID:   111,
		},
	}
	return m, state, maneuvers
}

func main() {
	flag.Parse()
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	// log: 运行时才修改
	if level, ok := logLevels[*logLevel]; ok {
		logrus.SetLevel(level)
	} else {
		log.Panicf("log.level must be one of %v", logLevels)
	}
	// 获取配置
	var c config.Config
	var file []byte
	var err error
	if *configPath != "" {
		file, err = os.ReadFile(*configPath)
		if err != nil {
			log.Panicf("config file load err: %v", err)
		}
	} else if *configData != "" {
		file, err = base64.StdEncoding.DecodeString(*configData)
		if err != nil {
			log.Panicf("config data load err: %v", err)
		}
	} else {
		log.Panic("config file or config data must be specified")
	}
	if err := yaml.UnmarshalStrict(file, &c); err != nil {
		log.Panicf("config file load err: %v", err)
	}
	log.Infof("%+v", c)

	wm, state, maneuvers := buildDemoWorld()
	t := task.NewContext(*job, wm, c, state, maneuvers, *seed)
	t.Run()
}
