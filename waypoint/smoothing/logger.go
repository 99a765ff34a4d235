package smoothing

import "github.com/sirupsen/logrus"

// log smoothing模块的日志记录器
var log = logrus.WithField("module", "smoothing")
