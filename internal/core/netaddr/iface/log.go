package iface

import "github.com/dep2p/go-netaddr/internal/util/logger"

var log = logger.Logger("netaddr.iface")
