// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package netsvr 把 HTTP 路由與服務啟停包成與框架無關的介面，目前以 chi 實作。
package netsvr

import (
	"net/http"

	"github.com/zintix-labs/sweeplab/server/app"
)

// NetSvr 封裝「路由行為 + 服務啟停」。
// 只給最外層組裝使用；handler 與子模組只面向 NetRouter。
// NetSvr 同時是 app.Component，可直接交給 app.App 管理。
type NetSvr interface {
	NetRouter
	app.Component
}

// NetRouter 定義純路由行為；Group 回呼只拿得到 NetRouter，看不到 Run/Shutdown。
type NetRouter interface {
	// middleware
	Use(middleware func(http.Handler) http.Handler)

	// 註冊路由
	Get(path string, h http.HandlerFunc)
	Post(path string, h http.HandlerFunc)
	Put(path string, h http.HandlerFunc)
	Delete(path string, h http.HandlerFunc)

	// 群組路由
	Group(path string, fn func(NetRouter))
}
