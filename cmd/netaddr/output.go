package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dep2p/go-netaddr"
)

// resolutionJSON -json 输出格式
type resolutionJSON struct {
	Local       netaddr.SocketEndpoint `json:"local"`
	External    netaddr.SocketEndpoint `json:"external"`
	HasExternal bool                   `json:"has_external"`
	Advertised  netaddr.SocketEndpoint `json:"advertised"`
	Multiaddr   string                 `json:"multiaddr"`
	Gateway     string                 `json:"gateway,omitempty"`
}

// printResolution 输出解析结果
func printResolution(w io.Writer, res netaddr.Resolution, asJSON bool) error {
	adv := res.Advertised()

	if asJSON {
		out := resolutionJSON{
			Local:       res.Local,
			External:    res.External,
			HasExternal: res.HasExternal,
			Advertised:  adv,
			Multiaddr:   adv.Multiaddr(),
		}
		if res.Gateway.IsValid() {
			out.Gateway = res.Gateway.String()
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	external := "未获知"
	if res.HasExternal {
		external = res.External.String()
	}
	gw := "未知"
	if res.Gateway.IsValid() {
		gw = res.Gateway.String()
	}

	fmt.Fprintf(w, "本地端点:  %s\n", res.Local)
	fmt.Fprintf(w, "外部端点:  %s\n", external)
	fmt.Fprintf(w, "通告地址:  %s (%s)\n", adv, adv.Multiaddr())
	fmt.Fprintf(w, "默认网关:  %s\n", gw)
	return nil
}
