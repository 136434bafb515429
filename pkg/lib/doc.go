// Package lib 包含与架构组件无关的基础设施库
//
//   - proto/analytics: 分析协议的网络消息定义与统计视图
package lib
