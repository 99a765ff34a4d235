package waypoint

import "github.com/sirupsen/logrus"

// log waypoint模块的日志记录器
var log = logrus.WithField("module", "waypoint")
